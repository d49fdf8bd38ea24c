package models

import "time"

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusAttended  BookingStatus = "attended"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// Terminal reports whether a booking status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusAttended || s == BookingStatusCancelled || s == BookingStatusNoShow
}

type ClassSlot struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	CoachID         string    `json:"coach_id"`
	GymID           string    `json:"gym_id,omitempty"`
	Capacity        int       `json:"capacity"`
	BookedCount     int       `json:"booked_count"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	PriceMinorUnits int64     `json:"price_minor_units"`
	CreatedAt       time.Time `json:"created_at"`
}

type Booking struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	ClassSlotID  string        `json:"class_slot_id"`
	Status       BookingStatus `json:"status"`
	CheckInToken string        `json:"check_in_token,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type BookingDetail struct {
	Booking
	Slot *ClassSlot `json:"slot,omitempty"`
}

package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/clock"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/store"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/token"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrForbidden                = errors.New("forbidden")
	ErrSlotNotFound             = errors.New("class slot not found")
	ErrSlotFull                 = errors.New("class slot is full")
	ErrDuplicateBooking         = errors.New("active booking already exists for this class")
	ErrBookingNotFound          = errors.New("booking not found")
	ErrNotCancellable           = errors.New("booking is not cancellable")
	ErrCancellationWindowPassed = errors.New("cancellation window has passed")
	ErrAlreadyCheckedIn         = errors.New("booking already checked in")
	ErrBookingNotActive         = errors.New("booking is no longer active")
	ErrCheckInTooEarly          = errors.New("check-in window has not opened yet")
	ErrCheckInTooLate           = errors.New("check-in window has closed")
)

const (
	// Bookings can be cancelled up to and including exactly 24h before the
	// class starts.
	cancellationWindow = 24 * time.Hour
	// Check-in opens 15 minutes before the class starts and closes when it
	// ends.
	checkInLead = 15 * time.Minute
)

type classCatalog interface {
	Create(ctx context.Context, input store.CreateClassSlotInput, now time.Time) (*models.ClassSlot, error)
	GetByID(ctx context.Context, slotID string) (*models.ClassSlot, error)
	List(ctx context.Context) ([]models.ClassSlot, error)
	IncrementBooked(ctx context.Context, slotID string) error
	DecrementBooked(ctx context.Context, slotID string) error
}

type checkInTokenIssuer interface {
	Issue(bookingID string, issuedAt time.Time) (string, error)
	Validate(tokenString string) (string, error)
}

// BookingService is the ledger for class bookings. It owns every booking
// record and every booked_count write, and serializes mutations under one
// lock so a near-full class cannot be double-booked by concurrent callers.
// Entitlement rules (tier, daily limit) live in AccessService and run before
// Book is called; the checks here are purely structural.
type BookingService struct {
	classes classCatalog
	issuer  checkInTokenIssuer
	clock   clock.Clock

	mu       sync.Mutex
	bookings map[string]*models.Booking
	active   map[activeBookingKey]string
}

type activeBookingKey struct {
	userID string
	slotID string
}

func NewBookingService(classes *store.ClassStore, issuer *token.Issuer, clk clock.Clock) *BookingService {
	return &BookingService{
		classes:  classes,
		issuer:   issuer,
		clock:    clk,
		bookings: make(map[string]*models.Booking),
		active:   make(map[activeBookingKey]string),
	}
}

func (s *BookingService) CreateSlot(ctx context.Context, input store.CreateClassSlotInput) (*models.ClassSlot, error) {
	now := s.clock.Now()
	if input.CoachID == "" || input.Title == "" {
		return nil, ErrInvalidInput
	}
	if input.StartAt.Before(now) {
		return nil, ErrInvalidInput
	}
	slot, err := s.classes.Create(ctx, input, now)
	if err != nil {
		if errors.Is(err, store.ErrInvalidSlot) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}
	return slot, nil
}

func (s *BookingService) GetSlot(ctx context.Context, slotID string) (*models.ClassSlot, error) {
	slot, err := s.classes.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, store.ErrClassNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

func (s *BookingService) ListSlots(ctx context.Context) ([]models.ClassSlot, error) {
	return s.classes.List(ctx)
}

// Book creates an active booking for the user on the slot and reserves a
// place, both in the same critical section. Check order: unknown slot, full
// slot, duplicate booking.
func (s *BookingService) Book(ctx context.Context, userID, slotID string) (*models.Booking, error) {
	if userID == "" || slotID == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := s.classes.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, store.ErrClassNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if slot.BookedCount >= slot.Capacity {
		return nil, ErrSlotFull
	}
	if _, exists := s.active[activeBookingKey{userID: userID, slotID: slotID}]; exists {
		return nil, ErrDuplicateBooking
	}

	now := s.clock.Now()
	bookingID := uuid.NewString()
	checkInToken, err := s.issuer.Issue(bookingID, now)
	if err != nil {
		return nil, err
	}

	if err := s.classes.IncrementBooked(ctx, slotID); err != nil {
		switch {
		case errors.Is(err, store.ErrClassFull):
			return nil, ErrSlotFull
		case errors.Is(err, store.ErrClassNotFound):
			return nil, ErrSlotNotFound
		default:
			return nil, err
		}
	}

	booking := &models.Booking{
		ID:           bookingID,
		UserID:       userID,
		ClassSlotID:  slotID,
		Status:       models.BookingStatusBooked,
		CheckInToken: checkInToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.bookings[bookingID] = booking
	s.active[activeBookingKey{userID: userID, slotID: slotID}] = bookingID

	result := *booking
	return &result, nil
}

// Cancel releases the user's booking. The cutoff is inclusive: exactly 24h
// before start is still cancellable, one second less is not.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	if booking.UserID != userID {
		return ErrForbidden
	}
	if booking.Status != models.BookingStatusBooked {
		return ErrNotCancellable
	}

	slot, err := s.classes.GetByID(ctx, booking.ClassSlotID)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	if slot.StartAt.Sub(now) < cancellationWindow {
		return ErrCancellationWindowPassed
	}

	if err := s.classes.DecrementBooked(ctx, booking.ClassSlotID); err != nil {
		return err
	}
	booking.Status = models.BookingStatusCancelled
	booking.UpdatedAt = now
	delete(s.active, activeBookingKey{userID: booking.UserID, slotID: booking.ClassSlotID})
	return nil
}

// CheckIn validates the opaque token against the issuer, then transitions the
// bound booking to attended if it is still active and the current time falls
// inside [startAt - 15min, endAt].
func (s *BookingService) CheckIn(ctx context.Context, tokenString string) (*models.Booking, error) {
	bookingID, err := s.issuer.Validate(tokenString)
	if err != nil {
		return nil, token.ErrInvalidToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, token.ErrInvalidToken
	}
	if booking.Status == models.BookingStatusAttended {
		return nil, ErrAlreadyCheckedIn
	}
	if booking.Status != models.BookingStatusBooked {
		return nil, ErrBookingNotActive
	}

	slot, err := s.classes.GetByID(ctx, booking.ClassSlotID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if now.Before(slot.StartAt.Add(-checkInLead)) {
		return nil, ErrCheckInTooEarly
	}
	if now.After(slot.EndAt) {
		return nil, ErrCheckInTooLate
	}

	booking.Status = models.BookingStatusAttended
	booking.UpdatedAt = now
	delete(s.active, activeBookingKey{userID: booking.UserID, slotID: booking.ClassSlotID})

	result := *booking
	return &result, nil
}

// MarkNoShows sweeps bookings still active past their class end and marks
// them no-shows. Safe to re-run; it never touches cancelled or attended
// bookings. Returns how many bookings transitioned.
func (s *BookingService) MarkNoShows(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	marked := 0
	for _, booking := range s.bookings {
		if booking.Status != models.BookingStatusBooked {
			continue
		}
		slot, err := s.classes.GetByID(ctx, booking.ClassSlotID)
		if err != nil {
			return marked, err
		}
		if !now.After(slot.EndAt) {
			continue
		}
		booking.Status = models.BookingStatusNoShow
		booking.UpdatedAt = now
		delete(s.active, activeBookingKey{userID: booking.UserID, slotID: booking.ClassSlotID})
		marked++
	}
	return marked, nil
}

// ListBookings returns the user's full booking history, newest first.
// Bookings are never deleted, so cancelled and attended entries stay visible.
func (s *BookingService) ListBookings(ctx context.Context, userID string) ([]models.BookingDetail, error) {
	s.mu.Lock()
	bookings := make([]models.Booking, 0)
	for _, booking := range s.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, *booking)
		}
	}
	s.mu.Unlock()

	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	details := make([]models.BookingDetail, 0, len(bookings))
	for _, booking := range bookings {
		detail := models.BookingDetail{Booking: booking}
		if slot, err := s.classes.GetByID(ctx, booking.ClassSlotID); err == nil {
			detail.Slot = slot
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}
	result := *booking
	return &result, nil
}

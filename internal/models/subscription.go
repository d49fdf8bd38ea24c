package models

import "time"

type Tier string

const (
	TierBasic   Tier = "basic"
	TierPlus    Tier = "plus"
	TierPremium Tier = "premium"
)

type SubscriptionState struct {
	UserID            string    `json:"user_id"`
	Tier              Tier      `json:"tier"`
	DailyBookingsUsed int       `json:"daily_bookings_used"`
	UpdatedAt         time.Time `json:"updated_at"`
}

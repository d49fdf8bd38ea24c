package store

import (
	"context"
	"sync"
	"time"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
)

// SubscriptionStore tracks each user's tier and how many class bookings they
// have spent today. The daily counter resets lazily: any read or write taken
// on a later local day than the last one recorded starts from zero. Users
// without a record are on the basic tier.
type SubscriptionStore struct {
	mu     sync.Mutex
	states map[string]subscriptionRecord
}

type subscriptionRecord struct {
	tier      models.Tier
	used      int
	day       string
	updatedAt time.Time
}

func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{states: make(map[string]subscriptionRecord)}
}

func localDay(now time.Time) string {
	return now.Local().Format("2006-01-02")
}

func (s *SubscriptionStore) Get(ctx context.Context, userID string, now time.Time) models.SubscriptionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.rolled(userID, now)
	return models.SubscriptionState{
		UserID:            userID,
		Tier:              rec.tier,
		DailyBookingsUsed: rec.used,
		UpdatedAt:         rec.updatedAt,
	}
}

// RecordBooking notes that the user spent one of today's booking slots.
func (s *SubscriptionStore) RecordBooking(ctx context.Context, userID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.rolled(userID, now)
	rec.used++
	rec.updatedAt = now
	s.states[userID] = rec
}

func (s *SubscriptionStore) SetTier(ctx context.Context, userID string, tier models.Tier, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.rolled(userID, now)
	rec.tier = tier
	rec.updatedAt = now
	s.states[userID] = rec
}

// rolled returns the user's record with the day boundary applied. Caller
// holds the lock.
func (s *SubscriptionStore) rolled(userID string, now time.Time) subscriptionRecord {
	rec, ok := s.states[userID]
	if !ok {
		return subscriptionRecord{tier: models.TierBasic, day: localDay(now)}
	}
	if rec.day != localDay(now) {
		rec.used = 0
		rec.day = localDay(now)
	}
	return rec
}

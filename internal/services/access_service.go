package services

import (
	"context"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/clock"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/store"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/subscription"
)

type Action string

const (
	ActionBookClass  Action = "book_class"
	ActionUseAICoach Action = "use_ai_coach"
	ActionAccessGyms Action = "access_gyms"
)

type DenialReason string

const (
	ReasonUpgradeRequired    DenialReason = "upgrade_required"
	ReasonDailyLimitExceeded DenialReason = "daily_limit_exceeded"
	ReasonUnknownAction      DenialReason = "unknown_action"
)

// Decision is a result value, not an error: a denial carries the reason so
// callers can branch to an upsell flow instead of failing.
type Decision struct {
	Allowed bool         `json:"allowed"`
	Reason  DenialReason `json:"reason,omitempty"`
}

func allow() Decision              { return Decision{Allowed: true} }
func deny(r DenialReason) Decision { return Decision{Reason: r} }

// AccessService is the single choke point deciding whether a user's
// subscription permits an action right now. It combines the pure policy
// table with the user's live daily usage; it never mutates booking state.
type AccessService struct {
	subs  *store.SubscriptionStore
	clock clock.Clock
}

func NewAccessService(subs *store.SubscriptionStore, clk clock.Clock) *AccessService {
	return &AccessService{subs: subs, clock: clk}
}

// Decide applies the policy table to an explicit subscription state.
func Decide(action Action, state models.SubscriptionState) Decision {
	caps := subscription.CapabilitiesFor(state.Tier)
	switch action {
	case ActionBookClass:
		if !caps.CanBookClasses {
			return deny(ReasonUpgradeRequired)
		}
		remaining := subscription.RemainingBookingsToday(state.Tier, state.DailyBookingsUsed)
		if remaining != subscription.Unlimited && remaining <= 0 {
			return deny(ReasonDailyLimitExceeded)
		}
		return allow()
	case ActionUseAICoach:
		if !caps.CanUseAICoach {
			return deny(ReasonUpgradeRequired)
		}
		return allow()
	case ActionAccessGyms:
		if !caps.CanAccessGyms {
			return deny(ReasonUpgradeRequired)
		}
		return allow()
	default:
		return deny(ReasonUnknownAction)
	}
}

// CheckPermission resolves the user's current subscription state (daily
// counter already rolled over the day boundary) and applies Decide.
func (s *AccessService) CheckPermission(ctx context.Context, userID string, action Action) Decision {
	state := s.subs.Get(ctx, userID, s.clock.Now())
	return Decide(action, state)
}

func (s *AccessService) State(ctx context.Context, userID string) models.SubscriptionState {
	return s.subs.Get(ctx, userID, s.clock.Now())
}

// RecordBooking burns one of the user's daily booking slots. Called after a
// gated Book succeeds.
func (s *AccessService) RecordBooking(ctx context.Context, userID string) {
	s.subs.RecordBooking(ctx, userID, s.clock.Now())
}

func (s *AccessService) SetTier(ctx context.Context, userID string, tier models.Tier) models.SubscriptionState {
	now := s.clock.Now()
	s.subs.SetTier(ctx, userID, tier, now)
	return s.subs.Get(ctx, userID, now)
}

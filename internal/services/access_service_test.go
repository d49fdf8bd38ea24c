package services

import (
	"context"
	"testing"
	"time"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/clock"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/store"
)

var accessBase = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

func newAccessFixture() (*AccessService, *clock.Fixed) {
	clk := clock.NewFixed(accessBase)
	return NewAccessService(store.NewSubscriptionStore(), clk), clk
}

func TestDecideBookClassByTier(t *testing.T) {
	cases := []struct {
		name       string
		tier       models.Tier
		used       int
		wantAllow  bool
		wantReason DenialReason
	}{
		{"basic always denied", models.TierBasic, 0, false, ReasonUpgradeRequired},
		{"basic denied regardless of usage", models.TierBasic, 9, false, ReasonUpgradeRequired},
		{"plus fresh allowed", models.TierPlus, 0, true, ""},
		{"plus exhausted", models.TierPlus, 1, false, ReasonDailyLimitExceeded},
		{"premium unlimited", models.TierPremium, 12, true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Decide(ActionBookClass, models.SubscriptionState{Tier: tc.tier, DailyBookingsUsed: tc.used})
			if decision.Allowed != tc.wantAllow {
				t.Fatalf("expected allowed=%v, got %+v", tc.wantAllow, decision)
			}
			if decision.Reason != tc.wantReason {
				t.Fatalf("expected reason %q, got %q", tc.wantReason, decision.Reason)
			}
		})
	}
}

func TestDecideCapabilityActions(t *testing.T) {
	if d := Decide(ActionUseAICoach, models.SubscriptionState{Tier: models.TierBasic}); d.Allowed || d.Reason != ReasonUpgradeRequired {
		t.Fatalf("expected basic AI coach denial, got %+v", d)
	}
	if d := Decide(ActionUseAICoach, models.SubscriptionState{Tier: models.TierPlus}); !d.Allowed {
		t.Fatalf("expected plus AI coach access, got %+v", d)
	}
	if d := Decide(ActionAccessGyms, models.SubscriptionState{Tier: models.TierBasic}); d.Allowed || d.Reason != ReasonUpgradeRequired {
		t.Fatalf("expected basic gym denial, got %+v", d)
	}
	if d := Decide(Action("teleport"), models.SubscriptionState{Tier: models.TierPremium}); d.Allowed || d.Reason != ReasonUnknownAction {
		t.Fatalf("expected unknown action denial, got %+v", d)
	}
}

func TestCheckPermissionCountsDailyUsage(t *testing.T) {
	service, _ := newAccessFixture()
	ctx := context.Background()

	service.SetTier(ctx, "user-a", models.TierPlus)

	if d := service.CheckPermission(ctx, "user-a", ActionBookClass); !d.Allowed {
		t.Fatalf("expected fresh plus user allowed, got %+v", d)
	}
	service.RecordBooking(ctx, "user-a")
	if d := service.CheckPermission(ctx, "user-a", ActionBookClass); d.Allowed || d.Reason != ReasonDailyLimitExceeded {
		t.Fatalf("expected daily limit denial, got %+v", d)
	}
}

func TestDailyUsageResetsAtDayBoundary(t *testing.T) {
	service, clk := newAccessFixture()
	ctx := context.Background()

	service.SetTier(ctx, "user-a", models.TierPlus)
	service.RecordBooking(ctx, "user-a")
	if d := service.CheckPermission(ctx, "user-a", ActionBookClass); d.Allowed {
		t.Fatalf("expected denial before rollover, got %+v", d)
	}

	clk.Advance(24 * time.Hour)
	if d := service.CheckPermission(ctx, "user-a", ActionBookClass); !d.Allowed {
		t.Fatalf("expected allowance after day rollover, got %+v", d)
	}
	state := service.State(ctx, "user-a")
	if state.DailyBookingsUsed != 0 {
		t.Fatalf("expected used counter reset, got %d", state.DailyBookingsUsed)
	}
}

func TestUnknownUserDefaultsToBasic(t *testing.T) {
	service, _ := newAccessFixture()

	decision := service.CheckPermission(context.Background(), "stranger", ActionBookClass)
	if decision.Allowed || decision.Reason != ReasonUpgradeRequired {
		t.Fatalf("expected basic-tier denial for unknown user, got %+v", decision)
	}
}

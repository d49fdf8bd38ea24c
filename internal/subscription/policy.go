package subscription

import "github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"

// Unlimited is the sentinel returned for tiers with no daily booking cap.
const Unlimited = -1

type Capabilities struct {
	CanBookClasses        bool `json:"can_book_classes"`
	CanUseAICoach         bool `json:"can_use_ai_coach"`
	CanAccessGyms         bool `json:"can_access_gyms"`
	CanBookMultiplePerDay bool `json:"can_book_multiple_per_day"`
}

// CapabilitiesFor maps a tier to its capability set. Unknown tiers get the
// Basic capability set so a corrupted state never grants access.
func CapabilitiesFor(tier models.Tier) Capabilities {
	switch tier {
	case models.TierPlus:
		return Capabilities{
			CanBookClasses: true,
			CanUseAICoach:  true,
			CanAccessGyms:  true,
		}
	case models.TierPremium:
		return Capabilities{
			CanBookClasses:        true,
			CanUseAICoach:         true,
			CanAccessGyms:         true,
			CanBookMultiplePerDay: true,
		}
	default:
		return Capabilities{}
	}
}

// DailyBookingLimit returns the number of class bookings a tier allows per
// local day, or Unlimited.
func DailyBookingLimit(tier models.Tier) int {
	switch tier {
	case models.TierPlus:
		return 1
	case models.TierPremium:
		return Unlimited
	default:
		return 0
	}
}

// RemainingBookingsToday returns how many bookings the tier still permits
// today given the count already used, or Unlimited.
func RemainingBookingsToday(tier models.Tier, used int) int {
	limit := DailyBookingLimit(tier)
	if limit == Unlimited {
		return Unlimited
	}
	remaining := limit - used
	if remaining < 0 {
		return 0
	}
	return remaining
}

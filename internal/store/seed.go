package store

import (
	"context"
	"fmt"
	"time"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/pkg/utils"
)

// Stores groups the in-memory stores a single process works against.
type Stores struct {
	Users         *UserStore
	Classes       *ClassStore
	Products      *ProductStore
	Subscriptions *SubscriptionStore
}

func NewStores() *Stores {
	return &Stores{
		Users:         NewUserStore(),
		Classes:       NewClassStore(),
		Products:      NewProductStore(),
		Subscriptions: NewSubscriptionStore(),
	}
}

// Seed loads a representative demo dataset: a coach with upcoming classes, a
// brand with a few products, and member accounts on each tier.
func (s *Stores) Seed(ctx context.Context, now time.Time) error {
	hash, err := utils.HashPassword("changeme123")
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	coach, err := s.Users.Create(ctx, "coach@sportflare.dev", hash, "coach", now)
	if err != nil {
		return fmt.Errorf("seed: create coach: %w", err)
	}
	brand, err := s.Users.Create(ctx, "brand@sportflare.dev", hash, "brand", now)
	if err != nil {
		return fmt.Errorf("seed: create brand: %w", err)
	}

	members := []struct {
		email string
		tier  models.Tier
	}{
		{"basic@sportflare.dev", models.TierBasic},
		{"plus@sportflare.dev", models.TierPlus},
		{"premium@sportflare.dev", models.TierPremium},
	}
	for _, m := range members {
		user, err := s.Users.Create(ctx, m.email, hash, "user", now)
		if err != nil {
			return fmt.Errorf("seed: create member %s: %w", m.email, err)
		}
		s.Subscriptions.SetTier(ctx, user.ID, m.tier, now)
	}

	classes := []CreateClassSlotInput{
		{Title: "Morning HIIT", CoachID: coach.ID, Capacity: 12, StartAt: now.Add(26 * time.Hour), EndAt: now.Add(27 * time.Hour), PriceMinorUnits: 1500},
		{Title: "Power Yoga", CoachID: coach.ID, Capacity: 8, StartAt: now.Add(48 * time.Hour), EndAt: now.Add(49 * time.Hour), PriceMinorUnits: 1200},
		{Title: "Strength Basics", CoachID: coach.ID, Capacity: 15, StartAt: now.Add(72 * time.Hour), EndAt: now.Add(73*time.Hour + 30*time.Minute), PriceMinorUnits: 1800},
	}
	for _, slot := range classes {
		if _, err := s.Classes.Create(ctx, slot, now); err != nil {
			return fmt.Errorf("seed: create class %q: %w", slot.Title, err)
		}
	}

	products := []CreateProductInput{
		{BrandID: brand.ID, Name: "Whey Protein 1kg", PriceMinorUnits: 4999},
		{BrandID: brand.ID, Name: "Resistance Bands Set", PriceMinorUnits: 2499},
		{BrandID: brand.ID, Name: "Shaker Bottle", PriceMinorUnits: 999},
	}
	for _, product := range products {
		if _, err := s.Products.Create(ctx, product, now); err != nil {
			return fmt.Errorf("seed: create product %q: %w", product.Name, err)
		}
	}

	return nil
}

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
	"github.com/google/uuid"
)

var (
	ErrClassNotFound = errors.New("class slot not found")
	ErrClassFull     = errors.New("class slot is full")
	ErrInvalidSlot   = errors.New("invalid class slot")
)

// ClassStore holds the scheduled class slots. Slots are immutable once
// created except booked_count, which only the booking service mutates via
// IncrementBooked / DecrementBooked.
type ClassStore struct {
	mu    sync.RWMutex
	slots map[string]models.ClassSlot
}

func NewClassStore() *ClassStore {
	return &ClassStore{slots: make(map[string]models.ClassSlot)}
}

type CreateClassSlotInput struct {
	Title           string
	CoachID         string
	GymID           string
	Capacity        int
	StartAt         time.Time
	EndAt           time.Time
	PriceMinorUnits int64
}

func (s *ClassStore) Create(ctx context.Context, input CreateClassSlotInput, now time.Time) (*models.ClassSlot, error) {
	if input.Capacity < 0 || input.PriceMinorUnits < 0 {
		return nil, ErrInvalidSlot
	}
	if !input.EndAt.After(input.StartAt) {
		return nil, ErrInvalidSlot
	}

	slot := models.ClassSlot{
		ID:              uuid.NewString(),
		Title:           input.Title,
		CoachID:         input.CoachID,
		GymID:           input.GymID,
		Capacity:        input.Capacity,
		StartAt:         input.StartAt,
		EndAt:           input.EndAt,
		PriceMinorUnits: input.PriceMinorUnits,
		CreatedAt:       now,
	}

	s.mu.Lock()
	s.slots[slot.ID] = slot
	s.mu.Unlock()

	return &slot, nil
}

func (s *ClassStore) GetByID(ctx context.Context, slotID string) (*models.ClassSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, ErrClassNotFound
	}
	return &slot, nil
}

func (s *ClassStore) List(ctx context.Context) ([]models.ClassSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]models.ClassSlot, 0, len(s.slots))
	for _, slot := range s.slots {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].StartAt.Equal(slots[j].StartAt) {
			return slots[i].ID < slots[j].ID
		}
		return slots[i].StartAt.Before(slots[j].StartAt)
	})
	return slots, nil
}

// IncrementBooked reserves one place on the slot. It refuses to exceed
// capacity even if the caller's own check raced.
func (s *ClassStore) IncrementBooked(ctx context.Context, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return ErrClassNotFound
	}
	if slot.BookedCount >= slot.Capacity {
		return ErrClassFull
	}
	slot.BookedCount++
	s.slots[slotID] = slot
	return nil
}

// DecrementBooked releases one place on the slot, never going below zero.
func (s *ClassStore) DecrementBooked(ctx context.Context, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return ErrClassNotFound
	}
	if slot.BookedCount > 0 {
		slot.BookedCount--
	}
	s.slots[slotID] = slot
	return nil
}

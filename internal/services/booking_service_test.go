package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/clock"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/store"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/token"
)

var bookingBase = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

type bookingFixture struct {
	service *BookingService
	classes *store.ClassStore
	clock   *clock.Fixed
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	classes := store.NewClassStore()
	clk := clock.NewFixed(bookingBase)
	service := NewBookingService(classes, token.NewIssuer("test-checkin-secret"), clk)
	return &bookingFixture{service: service, classes: classes, clock: clk}
}

// addSlot schedules a slot starting 48h from the base time unless overridden.
func (f *bookingFixture) addSlot(t *testing.T, capacity int, startAt, endAt time.Time) *models.ClassSlot {
	t.Helper()
	slot, err := f.service.CreateSlot(context.Background(), store.CreateClassSlotInput{
		Title:           "Morning HIIT",
		CoachID:         "coach-1",
		Capacity:        capacity,
		StartAt:         startAt,
		EndAt:           endAt,
		PriceMinorUnits: 1500,
	})
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	return slot
}

func (f *bookingFixture) defaultSlot(t *testing.T, capacity int) *models.ClassSlot {
	return f.addSlot(t, capacity, bookingBase.Add(48*time.Hour), bookingBase.Add(49*time.Hour))
}

func (f *bookingFixture) bookedCount(t *testing.T, slotID string) int {
	t.Helper()
	slot, err := f.classes.GetByID(context.Background(), slotID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return slot.BookedCount
}

func TestBookCreatesActiveBookingAndReservesPlace(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 2)

	booking, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if booking.Status != models.BookingStatusBooked {
		t.Fatalf("expected booked status, got %s", booking.Status)
	}
	if booking.CheckInToken == "" {
		t.Fatalf("expected a check-in token on the booking")
	}
	if got := f.bookedCount(t, slot.ID); got != 1 {
		t.Fatalf("expected booked_count 1, got %d", got)
	}
}

func TestBookUnknownSlotFails(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.service.Book(context.Background(), "user-a", "missing")
	if !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestBookFullSlotFailsWithoutMutation(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 1)

	if _, err := f.service.Book(context.Background(), "user-a", slot.ID); err != nil {
		t.Fatalf("Book: %v", err)
	}
	_, err := f.service.Book(context.Background(), "user-b", slot.ID)
	if !errors.Is(err, ErrSlotFull) {
		t.Fatalf("expected ErrSlotFull, got %v", err)
	}
	if got := f.bookedCount(t, slot.ID); got != 1 {
		t.Fatalf("expected booked_count unchanged at 1, got %d", got)
	}
}

func TestBookDuplicateActiveBookingFails(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 5)

	if _, err := f.service.Book(context.Background(), "user-a", slot.ID); err != nil {
		t.Fatalf("Book: %v", err)
	}
	_, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}
	if got := f.bookedCount(t, slot.ID); got != 1 {
		t.Fatalf("expected booked_count 1, got %d", got)
	}
}

func TestBookAgainAfterCancelSucceeds(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 5)

	booking, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if err := f.service.Cancel(context.Background(), "user-a", booking.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := f.service.Book(context.Background(), "user-a", slot.ID); err != nil {
		t.Fatalf("expected rebooking after cancel to succeed, got %v", err)
	}
	if got := f.bookedCount(t, slot.ID); got != 1 {
		t.Fatalf("expected booked_count 1 after cancel and rebook, got %d", got)
	}
}

func TestCancelAtExactCutoffSucceeds(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 2)

	booking, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	// Exactly 24h before start is still inside the window.
	f.clock.Set(slot.StartAt.Add(-24 * time.Hour))
	if err := f.service.Cancel(context.Background(), "user-a", booking.ID); err != nil {
		t.Fatalf("expected cancel at exactly 24h to succeed, got %v", err)
	}
	if got := f.bookedCount(t, slot.ID); got != 0 {
		t.Fatalf("expected booked_count 0, got %d", got)
	}

	err = f.service.Cancel(context.Background(), "user-a", booking.ID)
	if !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("expected second cancel to fail with ErrNotCancellable, got %v", err)
	}
	if got := f.bookedCount(t, slot.ID); got != 0 {
		t.Fatalf("expected booked_count still 0, got %d", got)
	}
}

func TestCancelInsideWindowFails(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 2)

	booking, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	f.clock.Set(slot.StartAt.Add(-24*time.Hour + time.Second))
	err = f.service.Cancel(context.Background(), "user-a", booking.ID)
	if !errors.Is(err, ErrCancellationWindowPassed) {
		t.Fatalf("expected ErrCancellationWindowPassed, got %v", err)
	}
	if got := f.bookedCount(t, slot.ID); got != 1 {
		t.Fatalf("expected booked_count unchanged at 1, got %d", got)
	}
}

func TestCancelForeignBookingForbidden(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 2)

	booking, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if err := f.service.Cancel(context.Background(), "user-b", booking.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.service.Cancel(context.Background(), "user-a", "missing"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestCheckInWindow(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 2)

	booking, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	f.clock.Set(slot.StartAt.Add(-16 * time.Minute))
	if _, err := f.service.CheckIn(context.Background(), booking.CheckInToken); !errors.Is(err, ErrCheckInTooEarly) {
		t.Fatalf("expected ErrCheckInTooEarly, got %v", err)
	}

	f.clock.Set(slot.StartAt.Add(-15 * time.Minute))
	attended, err := f.service.CheckIn(context.Background(), booking.CheckInToken)
	if err != nil {
		t.Fatalf("expected check-in at window open to succeed, got %v", err)
	}
	if attended.Status != models.BookingStatusAttended {
		t.Fatalf("expected attended status, got %s", attended.Status)
	}

	if _, err := f.service.CheckIn(context.Background(), booking.CheckInToken); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestCheckInAfterClassEndFails(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 2)

	booking, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	f.clock.Set(slot.EndAt.Add(time.Second))
	if _, err := f.service.CheckIn(context.Background(), booking.CheckInToken); !errors.Is(err, ErrCheckInTooLate) {
		t.Fatalf("expected ErrCheckInTooLate, got %v", err)
	}
}

func TestCheckInCancelledBookingFails(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 2)

	booking, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if err := f.service.Cancel(context.Background(), "user-a", booking.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	f.clock.Set(slot.StartAt)
	if _, err := f.service.CheckIn(context.Background(), booking.CheckInToken); !errors.Is(err, ErrBookingNotActive) {
		t.Fatalf("expected ErrBookingNotActive, got %v", err)
	}
}

func TestCheckInRejectsTamperedToken(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 2)

	booking, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	f.clock.Set(slot.StartAt)
	if _, err := f.service.CheckIn(context.Background(), booking.CheckInToken+"x"); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestMarkNoShowsSweepIsIdempotent(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 3)

	booking, err := f.service.Book(context.Background(), "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	other, err := f.service.Book(context.Background(), "user-b", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if err := f.service.Cancel(context.Background(), "user-b", other.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	f.clock.Set(slot.EndAt.Add(time.Minute))
	marked, err := f.service.MarkNoShows(context.Background())
	if err != nil {
		t.Fatalf("MarkNoShows: %v", err)
	}
	if marked != 1 {
		t.Fatalf("expected 1 no-show, got %d", marked)
	}

	swept, err := f.service.GetBooking(context.Background(), "user-a", booking.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if swept.Status != models.BookingStatusNoShow {
		t.Fatalf("expected no_show status, got %s", swept.Status)
	}

	cancelled, err := f.service.GetBooking(context.Background(), "user-b", other.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if cancelled.Status != models.BookingStatusCancelled {
		t.Fatalf("sweep must not touch cancelled bookings, got %s", cancelled.Status)
	}

	marked, err = f.service.MarkNoShows(context.Background())
	if err != nil {
		t.Fatalf("MarkNoShows: %v", err)
	}
	if marked != 0 {
		t.Fatalf("expected second sweep to mark nothing, got %d", marked)
	}
}

// Mirrors the reference walkthrough: a capacity-2 slot fills up, frees a
// place on cancel, and fills again.
func TestCapacityScenario(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 2)
	ctx := context.Background()

	if _, err := f.service.Book(ctx, "user-x", slot.ID); err != nil {
		t.Fatalf("Book user-x: %v", err)
	}
	bookingA, err := f.service.Book(ctx, "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book user-a: %v", err)
	}
	if got := f.bookedCount(t, slot.ID); got != 2 {
		t.Fatalf("expected booked_count 2, got %d", got)
	}

	if _, err := f.service.Book(ctx, "user-b", slot.ID); !errors.Is(err, ErrSlotFull) {
		t.Fatalf("expected ErrSlotFull for user-b, got %v", err)
	}
	if got := f.bookedCount(t, slot.ID); got != 2 {
		t.Fatalf("expected booked_count still 2, got %d", got)
	}

	if err := f.service.Cancel(ctx, "user-a", bookingA.ID); err != nil {
		t.Fatalf("Cancel user-a: %v", err)
	}
	if got := f.bookedCount(t, slot.ID); got != 1 {
		t.Fatalf("expected booked_count 1 after cancel, got %d", got)
	}

	if _, err := f.service.Book(ctx, "user-c", slot.ID); err != nil {
		t.Fatalf("Book user-c: %v", err)
	}
	if got := f.bookedCount(t, slot.ID); got != 2 {
		t.Fatalf("expected booked_count 2 after rebook, got %d", got)
	}
}

func TestListBookingsKeepsHistory(t *testing.T) {
	f := newBookingFixture(t)
	slot := f.defaultSlot(t, 5)
	ctx := context.Background()

	booking, err := f.service.Book(ctx, "user-a", slot.ID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if err := f.service.Cancel(ctx, "user-a", booking.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	f.clock.Advance(time.Minute)
	if _, err := f.service.Book(ctx, "user-a", slot.ID); err != nil {
		t.Fatalf("Book again: %v", err)
	}

	history, err := f.service.ListBookings(ctx, "user-a")
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries in history, got %d", len(history))
	}
	if history[0].Status != models.BookingStatusBooked {
		t.Fatalf("expected newest entry first, got %s", history[0].Status)
	}
	if history[1].Status != models.BookingStatusCancelled {
		t.Fatalf("expected cancelled entry retained, got %s", history[1].Status)
	}
	if history[0].Slot == nil || history[0].Slot.ID != slot.ID {
		t.Fatalf("expected slot attached to history entry")
	}
}

func TestCreateSlotRejectsPastStart(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.service.CreateSlot(context.Background(), store.CreateClassSlotInput{
		Title:    "Past class",
		CoachID:  "coach-1",
		Capacity: 5,
		StartAt:  bookingBase.Add(-time.Hour),
		EndAt:    bookingBase.Add(time.Hour),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/services"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/store"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/token"
	"github.com/gofiber/fiber/v2"
)

type BookingHandler struct {
	service bookingApplicationService
	gate    accessGate
}

type bookingApplicationService interface {
	CreateSlot(ctx context.Context, input store.CreateClassSlotInput) (*models.ClassSlot, error)
	GetSlot(ctx context.Context, slotID string) (*models.ClassSlot, error)
	ListSlots(ctx context.Context) ([]models.ClassSlot, error)
	Book(ctx context.Context, userID, slotID string) (*models.Booking, error)
	Cancel(ctx context.Context, userID, bookingID string) error
	CheckIn(ctx context.Context, tokenString string) (*models.Booking, error)
	ListBookings(ctx context.Context, userID string) ([]models.BookingDetail, error)
}

type accessGate interface {
	CheckPermission(ctx context.Context, userID string, action services.Action) services.Decision
	RecordBooking(ctx context.Context, userID string)
}

func NewBookingHandler(service *services.BookingService, gate *services.AccessService) *BookingHandler {
	return &BookingHandler{service: service, gate: gate}
}

type createClassRequest struct {
	Title           string `json:"title"`
	GymID           string `json:"gym_id"`
	Capacity        int    `json:"capacity"`
	StartAt         string `json:"start_at"`
	EndAt           string `json:"end_at"`
	PriceMinorUnits int64  `json:"price_minor_units"`
}

type bookClassRequest struct {
	ClassSlotID string `json:"class_slot_id"`
}

type checkInRequest struct {
	Token string `json:"token"`
}

func (h *BookingHandler) ListClasses(c *fiber.Ctx) error {
	slots, err := h.service.ListSlots(c.Context())
	if err != nil {
		return mapBookingError(c, err)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageLimit)))
	start, end, page, limit := pageSlice(page, limit, len(slots))

	return c.JSON(fiber.Map{
		"classes": slots[start:end],
		"meta":    buildPaginationMeta(page, limit, len(slots)),
	})
}

func (h *BookingHandler) GetClass(c *fiber.Ctx) error {
	slot, err := h.service.GetSlot(c.Context(), c.Params("id"))
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"class": slot})
}

func (h *BookingHandler) CreateClass(c *fiber.Ctx) error {
	role := currentRole(c)
	if role != "coach" && role != "owner" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	coachID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	startAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartAt))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_at must be a valid RFC3339 timestamp"})
	}
	endAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndAt))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_at must be a valid RFC3339 timestamp"})
	}

	slot, err := h.service.CreateSlot(c.Context(), store.CreateClassSlotInput{
		Title:           strings.TrimSpace(req.Title),
		CoachID:         coachID,
		GymID:           strings.TrimSpace(req.GymID),
		Capacity:        req.Capacity,
		StartAt:         startAt,
		EndAt:           endAt,
		PriceMinorUnits: req.PriceMinorUnits,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"class": slot})
}

// BookClass is the single entry point for member bookings: the access gate
// runs first, the structural ledger checks second, and the spent daily slot
// is recorded only after the booking succeeded.
func (h *BookingHandler) BookClass(c *fiber.Ctx) error {
	if role := currentRole(c); role != "user" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req bookClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	decision := h.gate.CheckPermission(c.Context(), userID, services.ActionBookClass)
	if !decision.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":  "Subscription does not permit this booking",
			"reason": decision.Reason,
		})
	}

	booking, err := h.service.Book(c.Context(), userID, req.ClassSlotID)
	if err != nil {
		return mapBookingError(c, err)
	}
	h.gate.RecordBooking(c.Context(), userID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	bookings, err := h.service.ListBookings(c.Context(), userID)
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if err := h.service.Cancel(c.Context(), userID, c.Params("id")); err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"status": "cancelled"})
}

func (h *BookingHandler) CheckIn(c *fiber.Ctx) error {
	var req checkInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Token) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token is required"})
	}

	booking, err := h.service.CheckIn(c.Context(), req.Token)
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"booking": booking})
}

func mapBookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrSlotNotFound), errors.Is(err, services.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSlotFull), errors.Is(err, services.ErrDuplicateBooking):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotCancellable),
		errors.Is(err, services.ErrCancellationWindowPassed),
		errors.Is(err, services.ErrAlreadyCheckedIn),
		errors.Is(err, services.ErrBookingNotActive),
		errors.Is(err, services.ErrCheckInTooEarly),
		errors.Is(err, services.ErrCheckInTooLate):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, token.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid check-in token"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process booking request"})
	}
}

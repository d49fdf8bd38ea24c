package handlers

import (
	"context"
	"strings"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/services"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/subscription"
	"github.com/gofiber/fiber/v2"
)

type SubscriptionHandler struct {
	service subscriptionApplicationService
}

type subscriptionApplicationService interface {
	State(ctx context.Context, userID string) models.SubscriptionState
	SetTier(ctx context.Context, userID string, tier models.Tier) models.SubscriptionState
	CheckPermission(ctx context.Context, userID string, action services.Action) services.Decision
}

func NewSubscriptionHandler(service *services.AccessService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

type upgradeRequest struct {
	Tier string `json:"tier"`
}

func (h *SubscriptionHandler) GetSubscription(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	state := h.service.State(c.Context(), userID)
	return c.JSON(fiber.Map{
		"subscription":       state,
		"capabilities":       subscription.CapabilitiesFor(state.Tier),
		"remaining_bookings": subscription.RemainingBookingsToday(state.Tier, state.DailyBookingsUsed),
	})
}

func (h *SubscriptionHandler) Upgrade(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req upgradeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	tier, ok := parseTier(req.Tier)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tier must be basic, plus or premium"})
	}

	state := h.service.SetTier(c.Context(), userID, tier)
	return c.JSON(fiber.Map{
		"subscription": state,
		"capabilities": subscription.CapabilitiesFor(state.Tier),
	})
}

func (h *SubscriptionHandler) CheckAccess(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	action, ok := parseAction(c.Params("action"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown action"})
	}

	return c.JSON(fiber.Map{"decision": h.service.CheckPermission(c.Context(), userID, action)})
}

func parseTier(value string) (models.Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "basic":
		return models.TierBasic, true
	case "plus":
		return models.TierPlus, true
	case "premium":
		return models.TierPremium, true
	default:
		return "", false
	}
}

func parseAction(value string) (services.Action, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "book_class":
		return services.ActionBookClass, true
	case "use_ai_coach":
		return services.ActionUseAICoach, true
	case "access_gyms":
		return services.ActionAccessGyms, true
	default:
		return "", false
	}
}

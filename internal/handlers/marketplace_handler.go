package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MarketplaceHandler struct {
	service marketplaceApplicationService
}

type marketplaceApplicationService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	AddToCart(ctx context.Context, userID, productID string, qty int) ([]models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID string, qty int) ([]models.CartItem, error)
	RemoveFromCart(ctx context.Context, userID, productID string) []models.CartItem
	Cart(ctx context.Context, userID string) []models.CartItem
	Checkout(ctx context.Context, userID, paymentMethod string) (*models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error)
	AdvanceOrder(ctx context.Context, orderID string) (*models.Order, error)
}

func NewMarketplaceHandler(service *services.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{service: service}
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *MarketplaceHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.Context())
	if err != nil {
		return mapMarketplaceError(c, err)
	}
	return c.JSON(fiber.Map{"products": products})
}

func (h *MarketplaceHandler) GetCart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	return c.JSON(fiber.Map{"cart": h.service.Cart(c.Context(), userID)})
}

func (h *MarketplaceHandler) AddToCart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.service.AddToCart(c.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return mapMarketplaceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"cart": cart})
}

func (h *MarketplaceHandler) UpdateQuantity(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	cart, err := h.service.UpdateQuantity(c.Context(), userID, c.Params("productId"), req.Quantity)
	if err != nil {
		return mapMarketplaceError(c, err)
	}
	return c.JSON(fiber.Map{"cart": cart})
}

func (h *MarketplaceHandler) RemoveFromCart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	return c.JSON(fiber.Map{"cart": h.service.RemoveFromCart(c.Context(), userID, c.Params("productId"))})
}

func (h *MarketplaceHandler) Checkout(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "payment_method is required"})
	}

	order, err := h.service.Checkout(c.Context(), userID, method)
	if err != nil {
		return mapMarketplaceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": order})
}

func (h *MarketplaceHandler) ListOrders(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	orders, err := h.service.ListOrders(c.Context(), userID)
	if err != nil {
		return mapMarketplaceError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

func (h *MarketplaceHandler) GetOrder(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	order, err := h.service.GetOrder(c.Context(), userID, c.Params("id"))
	if err != nil {
		return mapMarketplaceError(c, err)
	}
	return c.JSON(fiber.Map{"order": order})
}

func (h *MarketplaceHandler) AdvanceOrder(c *fiber.Ctx) error {
	role := currentRole(c)
	if role != "brand" && role != "owner" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	order, err := h.service.AdvanceOrder(c.Context(), c.Params("id"))
	if err != nil {
		return mapMarketplaceError(c, err)
	}
	return c.JSON(fiber.Map{"order": order})
}

func mapMarketplaceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidQuantity), errors.Is(err, services.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidOrderTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPaymentDeclined):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPaymentTimeout):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process marketplace request"})
	}
}

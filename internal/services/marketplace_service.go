package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/clock"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/models"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/payments"
	"github.com/NidhalNefissi/sportflare-unite-fitness-sub000/internal/store"
	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrProductNotFound        = errors.New("product not found")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrPaymentDeclined        = errors.New("payment declined")
	ErrPaymentTimeout         = errors.New("payment timed out")
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidOrderTransition = errors.New("invalid order status transition")
)

const defaultChargeTimeout = 10 * time.Second

type productCatalog interface {
	GetByID(ctx context.Context, productID string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
}

// MarketplaceService is the ledger for carts and orders. Carts are live,
// per-user and mutable; orders are immutable snapshots priced at checkout
// time. A failed or timed-out charge leaves the cart exactly as it was.
type MarketplaceService struct {
	products      productCatalog
	gateway       payments.Gateway
	clock         clock.Clock
	chargeTimeout time.Duration

	mu     sync.Mutex
	carts  map[string][]models.CartItem
	orders map[string]*models.Order
}

func NewMarketplaceService(products *store.ProductStore, gateway payments.Gateway, clk clock.Clock, chargeTimeout time.Duration) *MarketplaceService {
	if chargeTimeout <= 0 {
		chargeTimeout = defaultChargeTimeout
	}
	return &MarketplaceService{
		products:      products,
		gateway:       gateway,
		clock:         clk,
		chargeTimeout: chargeTimeout,
		carts:         make(map[string][]models.CartItem),
		orders:        make(map[string]*models.Order),
	}
}

func (s *MarketplaceService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

// AddToCart merges the quantity into an existing line or appends a new one.
func (s *MarketplaceService) AddToCart(ctx context.Context, userID, productID string, qty int) ([]models.CartItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	merged := false
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		cart = append(cart, models.CartItem{ProductID: productID, Quantity: qty})
	}
	s.carts[userID] = cart
	return copyCart(cart), nil
}

// UpdateQuantity sets the line quantity; zero or negative removes the line.
func (s *MarketplaceService) UpdateQuantity(ctx context.Context, userID, productID string, qty int) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	if qty <= 0 {
		s.carts[userID] = removeLine(cart, productID)
		return copyCart(s.carts[userID]), nil
	}
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity = qty
			s.carts[userID] = cart
			return copyCart(cart), nil
		}
	}
	return nil, ErrProductNotFound
}

// RemoveFromCart deletes the line. Removing an absent product is a no-op.
func (s *MarketplaceService) RemoveFromCart(ctx context.Context, userID, productID string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[userID] = removeLine(s.carts[userID], productID)
	return copyCart(s.carts[userID])
}

func (s *MarketplaceService) Cart(ctx context.Context, userID string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCart(s.carts[userID])
}

// Checkout prices the cart against the current catalog, charges the gateway
// under a bounded timeout, and only then snapshots the cart into an order and
// clears it. Declined or timed-out charges leave the cart untouched.
func (s *MarketplaceService) Checkout(ctx context.Context, userID, paymentMethod string) (*models.Order, error) {
	s.mu.Lock()
	lines := copyCart(s.carts[userID])
	s.mu.Unlock()

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		lineTotal := product.PriceMinorUnits * int64(line.Quantity)
		items = append(items, models.OrderItem{
			ProductID:           product.ID,
			Name:                product.Name,
			Quantity:            line.Quantity,
			UnitPriceMinorUnits: product.PriceMinorUnits,
			LineTotalMinorUnits: lineTotal,
		})
		total += lineTotal
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.chargeTimeout)
	defer cancel()
	transactionID, err := s.gateway.Charge(chargeCtx, total, paymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrDeclined):
			return nil, ErrPaymentDeclined
		case errors.Is(err, context.DeadlineExceeded):
			return nil, ErrPaymentTimeout
		default:
			return nil, err
		}
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		TotalMinorUnits: total,
		Status:          models.OrderStatusPending,
		PaymentMethod:   paymentMethod,
		TransactionID:   transactionID,
		CreatedAt:       s.clock.Now(),
	}

	s.mu.Lock()
	s.orders[order.ID] = order
	delete(s.carts, userID)
	s.mu.Unlock()

	return copyOrder(order), nil
}

func (s *MarketplaceService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]models.Order, 0)
	for _, order := range s.orders {
		if order.UserID == userID {
			orders = append(orders, *copyOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *MarketplaceService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return copyOrder(order), nil
}

// AdvanceOrder moves an order one step along pending -> confirmed -> shipped
// -> delivered. Delivered is terminal.
func (s *MarketplaceService) AdvanceOrder(ctx context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	switch order.Status {
	case models.OrderStatusPending:
		order.Status = models.OrderStatusConfirmed
	case models.OrderStatusConfirmed:
		order.Status = models.OrderStatusShipped
	case models.OrderStatusShipped:
		order.Status = models.OrderStatusDelivered
	default:
		return nil, ErrInvalidOrderTransition
	}
	return copyOrder(order), nil
}

func removeLine(cart []models.CartItem, productID string) []models.CartItem {
	kept := cart[:0]
	for _, line := range cart {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	return kept
}

func copyCart(cart []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(cart))
	copy(out, cart)
	return out
}

func copyOrder(order *models.Order) *models.Order {
	out := *order
	out.Items = make([]models.OrderItem, len(order.Items))
	copy(out.Items, order.Items)
	return &out
}

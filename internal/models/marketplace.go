package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

type Product struct {
	ID              string    `json:"id"`
	BrandID         string    `json:"brand_id"`
	Name            string    `json:"name"`
	PriceMinorUnits int64     `json:"price_minor_units"`
	CreatedAt       time.Time `json:"created_at"`
}

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderItem is a priced snapshot of a cart line taken at checkout.
type OrderItem struct {
	ProductID           string `json:"product_id"`
	Name                string `json:"name"`
	Quantity            int    `json:"quantity"`
	UnitPriceMinorUnits int64  `json:"unit_price_minor_units"`
	LineTotalMinorUnits int64  `json:"line_total_minor_units"`
}

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Items           []OrderItem `json:"items"`
	TotalMinorUnits int64       `json:"total_minor_units"`
	Status          OrderStatus `json:"status"`
	PaymentMethod   string      `json:"payment_method"`
	TransactionID   string      `json:"transaction_id"`
	CreatedAt       time.Time   `json:"created_at"`
}

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
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// ProductStore holds the marketplace catalog. Prices read at checkout time
// are snapshots; a later UpdatePrice never reaches past orders.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]models.Product)}
}

type CreateProductInput struct {
	BrandID         string
	Name            string
	PriceMinorUnits int64
}

func (s *ProductStore) Create(ctx context.Context, input CreateProductInput, now time.Time) (*models.Product, error) {
	if input.Name == "" || input.PriceMinorUnits < 0 {
		return nil, ErrInvalidProduct
	}

	product := models.Product{
		ID:              uuid.NewString(),
		BrandID:         input.BrandID,
		Name:            input.Name,
		PriceMinorUnits: input.PriceMinorUnits,
		CreatedAt:       now,
	}

	s.mu.Lock()
	s.products[product.ID] = product
	s.mu.Unlock()

	return &product, nil
}

func (s *ProductStore) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(s.products))
	for _, product := range s.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (s *ProductStore) UpdatePrice(ctx context.Context, productID string, priceMinorUnits int64) error {
	if priceMinorUnits < 0 {
		return ErrInvalidProduct
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	product.PriceMinorUnits = priceMinorUnits
	s.products[productID] = product
	return nil
}

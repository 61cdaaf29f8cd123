// Package basket implements the shopping basket ledger: per-owner product
// lines with stock-aware add/remove and read-time reconciliation.
package basket

import (
	"context"
	"errors"

	"github.com/dsemenov/storefront/internal/identity"
	"github.com/dsemenov/storefront/internal/models"
)

var (
	// ErrOutOfStock is returned when a product with zero availability is
	// added to the basket.
	ErrOutOfStock = errors.New("basket: product out of stock")
	// ErrNotFound is returned when the owner has no active line for the
	// product.
	ErrNotFound = errors.New("basket: line not found")
)

// Repository persists basket lines.
type Repository interface {
	// ActiveLines returns the owner's non-archived lines.
	ActiveLines(ctx context.Context, owner identity.Identity) ([]models.Basket, error)
	// ActiveLine returns the owner's non-archived line for a product, or
	// ErrNotFound.
	ActiveLine(ctx context.Context, owner identity.Identity, productID int64) (*models.Basket, error)
	// GetOrCreateLine returns the owner's active line for a product,
	// creating an empty one atomically if none exists. Concurrent calls for
	// the same (owner, product) must not produce two active lines.
	GetOrCreateLine(ctx context.Context, owner identity.Identity, productID int64) (*models.Basket, error)
	// SaveLine persists an updated line count.
	SaveLine(ctx context.Context, line *models.Basket) error
	// DeleteLine removes a line outright.
	DeleteLine(ctx context.Context, id int64) error
}

// ProductStore is the slice of the product repository the ledger needs.
type ProductStore interface {
	ProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// Line pairs a basket line with its product for display and pricing.
type Line struct {
	models.Basket
	Product *models.Product
}

type Service struct {
	baskets  Repository
	products ProductStore
}

func NewService(baskets Repository, products ProductStore) *Service {
	return &Service{baskets: baskets, products: products}
}

// List returns the owner's active lines, reconciling them against current
// stock first: a line whose product sold out is deleted, a line exceeding
// availability is clamped down. The reference system does this on every read
// so that the basket a shopper sees is always purchasable.
func (s *Service) List(ctx context.Context, owner identity.Identity) ([]Line, error) {
	baskets, err := s.baskets.ActiveLines(ctx, owner)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(baskets))
	for i := range baskets {
		b := baskets[i]
		product, err := s.products.ProductByID(ctx, b.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Count == 0 {
			if err := s.baskets.DeleteLine(ctx, b.ID); err != nil {
				return nil, err
			}
			continue
		}
		if product.Count < b.Count {
			b.Count = product.Count
			if err := s.baskets.SaveLine(ctx, &b); err != nil {
				return nil, err
			}
		}
		lines = append(lines, Line{Basket: b, Product: product})
	}
	return lines, nil
}

// Add puts delta more units of a product into the owner's basket. The new
// count is clamped to [1, available]: oversized requests silently cap at the
// stock ceiling, non-positive results floor at one unit. Adding a sold-out
// product fails with ErrOutOfStock. Returns the refreshed list.
func (s *Service) Add(ctx context.Context, owner identity.Identity, productID int64, delta int) ([]Line, error) {
	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Count == 0 {
		return nil, ErrOutOfStock
	}

	line, err := s.baskets.GetOrCreateLine(ctx, owner, productID)
	if err != nil {
		return nil, err
	}
	newCount := line.Count + delta
	switch {
	case newCount > product.Count:
		line.Count = product.Count
	case newCount <= 0:
		line.Count = 1
	default:
		line.Count = newCount
	}
	if err := s.baskets.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	return s.List(ctx, owner)
}

// Remove takes delta units of a product out of the owner's basket, deleting
// the line entirely when the count drops to zero or below. Returns the
// refreshed list.
func (s *Service) Remove(ctx context.Context, owner identity.Identity, productID int64, delta int) ([]Line, error) {
	if _, err := s.products.ProductByID(ctx, productID); err != nil {
		return nil, err
	}
	line, err := s.baskets.ActiveLine(ctx, owner, productID)
	if err != nil {
		return nil, err
	}
	newCount := line.Count - delta
	if newCount <= 0 {
		if err := s.baskets.DeleteLine(ctx, line.ID); err != nil {
			return nil, err
		}
	} else {
		line.Count = newCount
		if err := s.baskets.SaveLine(ctx, line); err != nil {
			return nil, err
		}
	}
	return s.List(ctx, owner)
}

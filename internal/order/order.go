// Package order converts active basket lines into immutable order snapshots
// and walks them through the created → confirmed → paid lifecycle.
package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dsemenov/storefront/internal/basket"
	"github.com/dsemenov/storefront/internal/identity"
	"github.com/dsemenov/storefront/internal/models"
	"github.com/dsemenov/storefront/internal/pricing"
)

var (
	// ErrNotFound covers both an absent order and one owned by somebody
	// else; callers cannot tell the two apart.
	ErrNotFound = errors.New("order: not found")
	// ErrEmptyBasket is returned by Checkout when the owner has no active
	// basket lines to convert.
	ErrEmptyBasket = errors.New("order: basket is empty")
	// ErrInsufficientStock is returned by ApplyPayment when an order line
	// exceeds the product's current availability.
	ErrInsufficientStock = errors.New("order: not enough goods in stock")
)

// Repository persists orders and the basket lines they consumed.
type Repository interface {
	// CreateFromBasket inserts the order and, in the same transaction,
	// archives the given basket lines and stamps them with the new order id.
	CreateFromBasket(ctx context.Context, o *models.Order, lineIDs []int64) (int64, error)
	// ByOwner returns all of the owner's orders, newest first.
	ByOwner(ctx context.Context, owner identity.Identity) ([]models.Order, error)
	// ByID returns the order only when it belongs to owner, ErrNotFound
	// otherwise.
	ByID(ctx context.Context, id int64, owner identity.Identity) (*models.Order, error)
	// Update persists changed order fields.
	Update(ctx context.Context, o *models.Order) error
	// Lines returns the archived basket lines consumed by the order.
	Lines(ctx context.Context, orderID int64) ([]models.Basket, error)
	// ApplyPayment atomically verifies stock for every order line,
	// decrements product counts and flips the order to paid. On
	// ErrInsufficientStock nothing is mutated.
	ApplyPayment(ctx context.Context, orderID int64) error
}

// BasketStore is the slice of the basket repository checkout needs.
type BasketStore interface {
	ActiveLines(ctx context.Context, owner identity.Identity) ([]models.Basket, error)
}

// ContactSource looks up the contact snapshot for an authenticated user.
type ContactSource interface {
	Contact(ctx context.Context, userID int64) (models.Contact, error)
}

// Confirmation carries the contact and delivery details submitted when a
// shopper confirms an order.
type Confirmation struct {
	FullName     string
	Email        string
	Phone        string
	DeliveryType string
	PaymentType  string
	City         string
	Address      string
}

// Detail is an order together with its consumed lines, priced for display.
type Detail struct {
	models.Order
	Items []basket.Line
}

type Service struct {
	orders   Repository
	baskets  BasketStore
	products basket.ProductStore
	contacts ContactSource
}

func NewService(orders Repository, baskets BasketStore, products basket.ProductStore, contacts ContactSource) *Service {
	return &Service{orders: orders, baskets: baskets, products: products, contacts: contacts}
}

// Checkout snapshots the owner's active basket into a new order: the total is
// fixed at current effective prices, the consumed lines are archived and
// stamped with the order id, and the order starts out in status created.
// Anonymous owners get a blank contact snapshot.
func (s *Service) Checkout(ctx context.Context, owner identity.Identity, now time.Time) (int64, error) {
	lines, err := s.baskets.ActiveLines(ctx, owner)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, ErrEmptyBasket
	}

	var contact models.Contact
	if user, ok := owner.(identity.Authenticated); ok {
		contact, err = s.contacts.Contact(ctx, user.UserID)
		if err != nil {
			return 0, err
		}
	}

	total, err := s.totalCost(ctx, lines, now)
	if err != nil {
		return 0, err
	}

	o := &models.Order{
		Owner:        owner,
		CreatedAt:    now,
		FullName:     contact.FullName,
		Email:        contact.Email,
		Phone:        contact.Phone,
		DeliveryType: models.DeliveryOrdinary,
		PaymentType:  models.PaymentOnline,
		TotalCost:    total,
		Status:       models.OrderStatusCreated,
	}
	lineIDs := make([]int64, len(lines))
	for i, l := range lines {
		lineIDs[i] = l.ID
	}
	return s.orders.CreateFromBasket(ctx, o, lineIDs)
}

// Confirm applies the submitted contact and delivery details to the owner's
// order, recomputes the total from the order's own lines to guard against
// price drift since checkout, and moves it to status confirmed.
func (s *Service) Confirm(ctx context.Context, owner identity.Identity, orderID int64, c Confirmation, now time.Time) error {
	o, err := s.orders.ByID(ctx, orderID, owner)
	if err != nil {
		return err
	}
	lines, err := s.orders.Lines(ctx, o.ID)
	if err != nil {
		return err
	}
	total, err := s.totalCost(ctx, lines, now)
	if err != nil {
		return err
	}

	o.FullName = c.FullName
	o.Email = c.Email
	o.Phone = c.Phone
	o.DeliveryType = c.DeliveryType
	o.PaymentType = c.PaymentType
	o.City = c.City
	o.Address = c.Address
	o.TotalCost = total
	o.Status = models.OrderStatusConfirmed
	return s.orders.Update(ctx, o)
}

// Fetch returns the owner's order with its lines. For authenticated callers
// whose order still has a blank contact snapshot (it was created anonymously
// and claimed by the identity merge), the snapshot is backfilled from the
// profile and persisted.
func (s *Service) Fetch(ctx context.Context, owner identity.Identity, orderID int64) (*Detail, error) {
	o, err := s.orders.ByID(ctx, orderID, owner)
	if err != nil {
		return nil, err
	}
	if user, ok := owner.(identity.Authenticated); ok && strings.TrimSpace(o.FullName) == "" {
		contact, err := s.contacts.Contact(ctx, user.UserID)
		if err != nil {
			return nil, err
		}
		o.FullName = contact.FullName
		o.Email = contact.Email
		o.Phone = contact.Phone
		if err := s.orders.Update(ctx, o); err != nil {
			return nil, err
		}
	}
	items, err := s.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Order: *o, Items: items}, nil
}

// List returns all of the owner's orders with their lines.
func (s *Service) List(ctx context.Context, owner identity.Identity) ([]Detail, error) {
	orders, err := s.orders.ByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	details := make([]Detail, 0, len(orders))
	for i := range orders {
		items, err := s.items(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		details = append(details, Detail{Order: orders[i], Items: items})
	}
	return details, nil
}

func (s *Service) items(ctx context.Context, orderID int64) ([]basket.Line, error) {
	lines, err := s.orders.Lines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items := make([]basket.Line, 0, len(lines))
	for i := range lines {
		product, err := s.products.ProductByID(ctx, lines[i].ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, basket.Line{Basket: lines[i], Product: product})
	}
	return items, nil
}

// totalCost is Σ effective price × count over the given lines, rounded to
// one decimal place like every other money figure in the system.
func (s *Service) totalCost(ctx context.Context, lines []models.Basket, now time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for i := range lines {
		product, err := s.products.ProductByID(ctx, lines[i].ProductID)
		if err != nil {
			return decimal.Zero, err
		}
		price := pricing.EffectivePrice(product, now)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(lines[i].Count))))
	}
	return total.RoundBank(1), nil
}

package memstore

import (
	"context"
	"sort"

	"github.com/dsemenov/storefront/internal/identity"
	"github.com/dsemenov/storefront/internal/models"
	"github.com/dsemenov/storefront/internal/order"
)

func (s *Store) CreateFromBasket(ctx context.Context, o *models.Order, lineIDs []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.nextID()
	copied := *o
	s.orders[o.ID] = &copied
	for _, id := range lineIDs {
		if b, ok := s.baskets[id]; ok {
			b.Archived = true
			orderID := o.ID
			b.OrderID = &orderID
		}
	}
	return o.ID, nil
}

func (s *Store) ByOwner(ctx context.Context, owner identity.Identity) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.Order
	for _, o := range s.orders {
		if ownerEqual(o.Owner, owner) {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (s *Store) ByID(ctx context.Context, id int64, owner identity.Identity) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || !ownerEqual(o.Owner, owner) {
		return nil, order.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *Store) Update(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		return order.ErrNotFound
	}
	copied := *o
	s.orders[o.ID] = &copied
	return nil
}

func (s *Store) Lines(ctx context.Context, orderID int64) ([]models.Basket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lines []models.Basket
	for _, b := range s.baskets {
		if b.OrderID != nil && *b.OrderID == orderID {
			lines = append(lines, *b)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

// ApplyPayment checks stock for every order line and only then decrements
// counts and flips the status, all under the store lock so a racing payment
// cannot double-decrement.
func (s *Store) ApplyPayment(ctx context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}

	var lines []*models.Basket
	for _, b := range s.baskets {
		if b.OrderID != nil && *b.OrderID == orderID {
			lines = append(lines, b)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })

	for _, b := range lines {
		p, ok := s.products[b.ProductID]
		if !ok || b.Count > p.Count {
			return order.ErrInsufficientStock
		}
	}
	for _, b := range lines {
		s.products[b.ProductID].Count -= b.Count
	}
	o.Status = models.OrderStatusPaid
	return nil
}

// ReassignOrders re-owns all of the token's orders to the user.
func (s *Store) ReassignOrders(ctx context.Context, token string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if ownerEqual(o.Owner, identity.Anonymous{Token: token}) {
			o.Owner = identity.Authenticated{UserID: userID}
		}
	}
	return nil
}

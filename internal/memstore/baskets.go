package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/dsemenov/storefront/internal/basket"
	"github.com/dsemenov/storefront/internal/identity"
	"github.com/dsemenov/storefront/internal/models"
)

func (s *Store) ActiveLines(ctx context.Context, owner identity.Identity) ([]models.Basket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lines []models.Basket
	for _, b := range s.baskets {
		if !b.Archived && ownerEqual(b.Owner, owner) {
			lines = append(lines, *b)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func (s *Store) ActiveLine(ctx context.Context, owner identity.Identity, productID int64) (*models.Basket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.baskets {
		if !b.Archived && b.ProductID == productID && ownerEqual(b.Owner, owner) {
			copied := *b
			return &copied, nil
		}
	}
	return nil, basket.ErrNotFound
}

func (s *Store) GetOrCreateLine(ctx context.Context, owner identity.Identity, productID int64) (*models.Basket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.baskets {
		if !b.Archived && b.ProductID == productID && ownerEqual(b.Owner, owner) {
			copied := *b
			return &copied, nil
		}
	}
	b := &models.Basket{
		ID:        s.nextID(),
		Owner:     owner,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
	s.baskets[b.ID] = b
	copied := *b
	return &copied, nil
}

func (s *Store) SaveLine(ctx context.Context, line *models.Basket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.baskets[line.ID]; !ok {
		return basket.ErrNotFound
	}
	copied := *line
	s.baskets[line.ID] = &copied
	return nil
}

func (s *Store) DeleteLine(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.baskets, id)
	return nil
}

// ArchiveActiveLines implements the first step of the identity merge: the
// user's own active basket is archived wholesale.
func (s *Store) ArchiveActiveLines(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.baskets {
		if !b.Archived && ownerEqual(b.Owner, identity.Authenticated{UserID: userID}) {
			b.Archived = true
		}
	}
	return nil
}

// ReassignLines re-owns the token's active lines to the user.
func (s *Store) ReassignLines(ctx context.Context, token string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.baskets {
		if !b.Archived && ownerEqual(b.Owner, identity.Anonymous{Token: token}) {
			b.Owner = identity.Authenticated{UserID: userID}
		}
	}
	return nil
}

// Package memstore is an in-memory implementation of every repository
// interface in the system. Tests run services against it, and the server's
// demo mode uses it to come up without a database.
package memstore

import (
	"sync"

	"github.com/dsemenov/storefront/internal/identity"
	"github.com/dsemenov/storefront/internal/models"
)

// Store holds all tables behind one mutex. Method sets across the files of
// this package make *Store satisfy the basket, order, payment, auth, profile
// and catalog repository interfaces.
type Store struct {
	mu sync.Mutex

	products    map[int64]*models.Product
	baskets     map[int64]*models.Basket
	orders      map[int64]*models.Order
	users       map[int64]*models.User
	profiles    map[int64]*models.Profile
	reviews     map[int64]*models.Review
	tags        map[int64]*models.Tag
	productTags map[int64][]int64

	lastID int64
}

func New() *Store {
	return &Store{
		products:    make(map[int64]*models.Product),
		baskets:     make(map[int64]*models.Basket),
		orders:      make(map[int64]*models.Order),
		users:       make(map[int64]*models.User),
		profiles:    make(map[int64]*models.Profile),
		reviews:     make(map[int64]*models.Review),
		tags:        make(map[int64]*models.Tag),
		productTags: make(map[int64][]int64),
	}
}

// nextID must be called with the mutex held.
func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

// ownerEqual compares identities. The variants are comparable structs, so
// interface equality does the right thing.
func ownerEqual(a, b identity.Identity) bool {
	return a == b
}

package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dsemenov/storefront/internal/catalog"
	"github.com/dsemenov/storefront/internal/models"
	"github.com/dsemenov/storefront/internal/pricing"
)

// AddProduct seeds a product and returns its id.
func (s *Store) AddProduct(p models.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	pricing.Refresh(&p, time.Now())
	s.products[p.ID] = &p
	return p.ID
}

// AddTag seeds a tag, optionally attached to products.
func (s *Store) AddTag(name string, productIDs ...int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.tags[id] = &models.Tag{ID: id, Name: name}
	for _, pid := range productIDs {
		s.productTags[pid] = append(s.productTags[pid], id)
	}
	return id
}

func (s *Store) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	pricing.Refresh(p, time.Now())
	copied := *p
	s.products[p.ID] = &copied
	return nil
}

func (s *Store) ListProducts(ctx context.Context, f catalog.Filter) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Product
	for _, p := range s.products {
		if !s.matches(p, f) {
			continue
		}
		out = append(out, *p)
	}
	s.sortProducts(out, f)
	return out, nil
}

func (s *Store) matches(p *models.Product, f catalog.Filter) bool {
	if f.Name != "" && !containsFold(p.Title, f.Name) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.FreeDelivery && !p.FreeDelivery {
		return false
	}
	if f.Available && p.Count == 0 {
		return false
	}
	if f.LowStock && (p.Count < 1 || p.Count > 5) {
		return false
	}
	if len(f.Tags) > 0 && !s.hasAnyTag(p.ID, f.Tags) {
		return false
	}
	return true
}

func (s *Store) hasAnyTag(productID int64, tags []int64) bool {
	for _, have := range s.productTags[productID] {
		for _, want := range tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// sortProducts must be called with the mutex held (review counts).
func (s *Store) sortProducts(products []models.Product, f catalog.Filter) {
	less := func(a, b *models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch f.Sort {
	case catalog.SortPrice:
		less = func(a, b *models.Product) bool { return a.Price.LessThan(b.Price) }
	case catalog.SortRating:
		less = func(a, b *models.Product) bool { return ratingOf(a).LessThan(ratingOf(b)) }
	case catalog.SortCount:
		less = func(a, b *models.Product) bool { return a.Count < b.Count }
	case catalog.SortReviews:
		counts := make(map[int64]int)
		for _, r := range s.reviews {
			counts[r.ProductID]++
		}
		less = func(a, b *models.Product) bool { return counts[a.ID] < counts[b.ID] }
	}
	sort.SliceStable(products, func(i, j int) bool {
		if f.Desc {
			return less(&products[j], &products[i])
		}
		return less(&products[i], &products[j])
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func ratingOf(p *models.Product) decimal.Decimal {
	if p.Rating == nil {
		return decimal.Zero
	}
	return *p.Rating
}

func (s *Store) TagsByPopularity(ctx context.Context) ([]models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[int64]int)
	for _, tagIDs := range s.productTags {
		for _, id := range tagIDs {
			counts[id]++
		}
	}
	tags := make([]models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		tags = append(tags, *t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i].ID] != counts[tags[j].ID] {
			return counts[tags[i].ID] > counts[tags[j].ID]
		}
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

func (s *Store) TagsFor(ctx context.Context, productID int64) ([]models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]models.Tag, 0, len(s.productTags[productID]))
	for _, id := range s.productTags[productID] {
		if t, ok := s.tags[id]; ok {
			tags = append(tags, *t)
		}
	}
	return tags, nil
}

func (s *Store) ReviewsFor(ctx context.Context, productID int64) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reviews []models.Review
	for _, r := range s.reviews {
		if r.ProductID == productID {
			reviews = append(reviews, *r)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}

func (s *Store) AddReview(ctx context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	copied := *r
	s.reviews[r.ID] = &copied
	return nil
}

func (s *Store) AverageRating(ctx context.Context, productID int64) (*decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, n := 0, 0
	for _, r := range s.reviews {
		if r.ProductID == productID {
			sum += r.Rate
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(n))).RoundBank(1)
	return &avg, nil
}

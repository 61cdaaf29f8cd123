// Package catalog is the read side of the store: product lookups, filtered
// listings, tags and reviews.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dsemenov/storefront/internal/models"
	"github.com/dsemenov/storefront/internal/pricing"
)

// ErrNotFound is returned for an unknown product.
var ErrNotFound = errors.New("catalog: product not found")

// Filter narrows a product listing. Zero values mean "don't filter".
type Filter struct {
	Name         string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	FreeDelivery bool
	Available    bool
	LowStock     bool
	Tags         []int64
	Sort         string
	Desc         bool
}

// Sort keys accepted by Filter.Sort; anything else falls back to SortDate.
const (
	SortDate    = "date"
	SortPrice   = "price"
	SortRating  = "rating"
	SortReviews = "reviews"
	SortCount   = "count"
)

// Repository is the product read/write store behind the catalog.
type Repository interface {
	ProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, f Filter) ([]models.Product, error)
	// SaveProduct persists the product, refreshing its cached sale price.
	SaveProduct(ctx context.Context, p *models.Product) error
	TagsByPopularity(ctx context.Context) ([]models.Tag, error)
	TagsFor(ctx context.Context, productID int64) ([]models.Tag, error)
	ReviewsFor(ctx context.Context, productID int64) ([]models.Review, error)
	AddReview(ctx context.Context, r *models.Review) error
	AverageRating(ctx context.Context, productID int64) (*decimal.Decimal, error)
}

// Detail is a product with its relations, ready for serialization.
type Detail struct {
	models.Product
	Tags    []models.Tag    `json:"tags"`
	Reviews []models.Review `json:"reviews"`
}

// Page is one page of a product listing.
type Page struct {
	Items       []Detail
	CurrentPage int
	LastPage    int
}

type Service struct {
	products Repository
}

func NewService(products Repository) *Service {
	return &Service{products: products}
}

// Product returns one product with tags and reviews.
func (s *Service) Product(ctx context.Context, id int64) (*Detail, error) {
	p, err := s.products.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, *p)
}

// Catalog returns a filtered, sorted page of products.
func (s *Service) Catalog(ctx context.Context, f Filter, page, limit int) (*Page, error) {
	products, err := s.products.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, products, page, limit)
}

// Popular returns the four highest-rated products still in stock.
func (s *Service) Popular(ctx context.Context) ([]Detail, error) {
	products, err := s.products.ListProducts(ctx, Filter{Available: true, Sort: SortRating, Desc: true})
	if err != nil {
		return nil, err
	}
	if len(products) > 4 {
		products = products[:4]
	}
	return s.details(ctx, products)
}

// Limited returns products running low on stock, scarcest first.
func (s *Service) Limited(ctx context.Context) ([]Detail, error) {
	products, err := s.products.ListProducts(ctx, Filter{LowStock: true, Sort: SortCount})
	if err != nil {
		return nil, err
	}
	return s.details(ctx, products)
}

// Sales returns a page of in-stock products whose discount window is active
// right now.
func (s *Service) Sales(ctx context.Context, now time.Time, page, limit int) (*Page, error) {
	products, err := s.products.ListProducts(ctx, Filter{Available: true})
	if err != nil {
		return nil, err
	}
	onSale := products[:0]
	for _, p := range products {
		if pricing.SaleActive(&p, now) {
			onSale = append(onSale, p)
		}
	}
	return s.page(ctx, onSale, page, limit)
}

// Tags lists all tags, most used first.
func (s *Service) Tags(ctx context.Context) ([]models.Tag, error) {
	return s.products.TagsByPopularity(ctx)
}

// AddReview stores a review and recomputes the product's average rating. A
// blank author is recorded as Anonymous. Returns the product's review list.
func (s *Service) AddReview(ctx context.Context, productID int64, r models.Review) ([]models.Review, error) {
	p, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(r.Author) == "" {
		r.Author = "Anonymous"
	}
	r.ProductID = p.ID
	if err := s.products.AddReview(ctx, &r); err != nil {
		return nil, err
	}
	rating, err := s.products.AverageRating(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Rating = rating
	if err := s.products.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	return s.products.ReviewsFor(ctx, p.ID)
}

func (s *Service) detail(ctx context.Context, p models.Product) (*Detail, error) {
	tags, err := s.products.TagsFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.products.ReviewsFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Product: p, Tags: tags, Reviews: reviews}, nil
}

func (s *Service) details(ctx context.Context, products []models.Product) ([]Detail, error) {
	out := make([]Detail, 0, len(products))
	for _, p := range products {
		d, err := s.detail(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *Service) page(ctx context.Context, products []models.Product, page, limit int) (*Page, error) {
	if limit <= 0 {
		limit = 20
	}
	lastPage := (len(products) + limit - 1) / limit
	if lastPage == 0 {
		lastPage = 1
	}
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}
	start := (page - 1) * limit
	end := start + limit
	if end > len(products) {
		end = len(products)
	}
	items, err := s.details(ctx, products[start:end])
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, CurrentPage: page, LastPage: lastPage}, nil
}

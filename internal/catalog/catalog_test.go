package catalog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsemenov/storefront/internal/catalog"
	"github.com/dsemenov/storefront/internal/memstore"
	"github.com/dsemenov/storefront/internal/models"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func seedCatalog(store *memstore.Store) map[string]int64 {
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	weekAgo := time.Now().AddDate(0, 0, -7)
	nextWeek := time.Now().AddDate(0, 0, 7)

	ids := map[string]int64{
		"keyboard": store.AddProduct(models.Product{
			Title:        "Mechanical keyboard",
			Price:        decimal.NewFromFloat(129.99),
			Count:        25,
			FreeDelivery: true,
			CreatedAt:    base,
		}),
		"dock": store.AddProduct(models.Product{
			Title:     "USB-C dock",
			Price:     decimal.NewFromFloat(89.50),
			Count:     10,
			Discount:  decimal.NewFromFloat(15.0),
			DateFrom:  &weekAgo,
			DateTo:    &nextWeek,
			CreatedAt: base.AddDate(0, 0, 1),
		}),
		"tote": store.AddProduct(models.Product{
			Title:     "Canvas tote bag",
			Price:     decimal.NewFromFloat(19.90),
			Count:     3,
			CreatedAt: base.AddDate(0, 0, 2),
		}),
		"kettle": store.AddProduct(models.Product{
			Title:     "Pour-over kettle",
			Price:     decimal.NewFromFloat(45.00),
			Count:     0,
			CreatedAt: base.AddDate(0, 0, 3),
		}),
	}
	store.AddTag("electronics", ids["keyboard"], ids["dock"])
	store.AddTag("accessories", ids["keyboard"], ids["tote"])
	store.AddTag("kitchen", ids["kettle"])
	return ids
}

func titles(items []catalog.Detail) []string {
	out := make([]string, len(items))
	for i, d := range items {
		out[i] = d.Title
	}
	return out
}

func TestCatalogFilters(t *testing.T) {
	store := memstore.New()
	seedCatalog(store)
	svc := catalog.NewService(store)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter catalog.Filter
		want   []string
	}{
		{
			name:   "name substring is case-insensitive",
			filter: catalog.Filter{Name: "KETTLE"},
			want:   []string{"Pour-over kettle"},
		},
		{
			name:   "price range",
			filter: catalog.Filter{MinPrice: dec("40"), MaxPrice: dec("90")},
			want:   []string{"USB-C dock", "Pour-over kettle"},
		},
		{
			name:   "free delivery",
			filter: catalog.Filter{FreeDelivery: true},
			want:   []string{"Mechanical keyboard"},
		},
		{
			name:   "available hides sold out",
			filter: catalog.Filter{Available: true},
			want:   []string{"Mechanical keyboard", "USB-C dock", "Canvas tote bag"},
		},
		{
			name:   "price sort descending",
			filter: catalog.Filter{Sort: catalog.SortPrice, Desc: true},
			want:   []string{"Mechanical keyboard", "USB-C dock", "Pour-over kettle", "Canvas tote bag"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Catalog(ctx, tt.filter, 1, 20)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(page.Items))
		})
	}
}

func TestCatalogFiltersByTag(t *testing.T) {
	store := memstore.New()
	seedCatalog(store)
	svc := catalog.NewService(store)

	tags, err := svc.Tags(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tags)
	// Two products carry "electronics" and "accessories", one carries
	// "kitchen", so popularity puts kitchen last.
	assert.Equal(t, "kitchen", tags[len(tags)-1].Name)

	var kitchenID int64
	for _, tag := range tags {
		if tag.Name == "kitchen" {
			kitchenID = tag.ID
		}
	}
	page, err := svc.Catalog(context.Background(), catalog.Filter{Tags: []int64{kitchenID}}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pour-over kettle"}, titles(page.Items))
}

func TestCatalogPagination(t *testing.T) {
	store := memstore.New()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		store.AddProduct(models.Product{
			Title:     fmt.Sprintf("Product %d", i+1),
			Price:     decimal.NewFromInt(int64(10 + i)),
			Count:     1,
			CreatedAt: base.AddDate(0, 0, i),
		})
	}
	svc := catalog.NewService(store)
	ctx := context.Background()

	page, err := svc.Catalog(ctx, catalog.Filter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, []string{"Product 1", "Product 2"}, titles(page.Items))

	page, err = svc.Catalog(ctx, catalog.Filter{}, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Product 5"}, titles(page.Items))

	// Out-of-range pages clamp instead of erroring.
	page, err = svc.Catalog(ctx, catalog.Filter{}, 99, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, []string{"Product 5"}, titles(page.Items))
}

func TestSalesListsActiveWindowsOnly(t *testing.T) {
	store := memstore.New()
	seedCatalog(store)
	svc := catalog.NewService(store)

	page, err := svc.Sales(context.Background(), time.Now(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"USB-C dock"}, titles(page.Items))
}

func TestLimitedListsScarceStockFirst(t *testing.T) {
	store := memstore.New()
	seedCatalog(store)
	store.AddProduct(models.Product{
		Title: "Desk mat",
		Price: decimal.NewFromFloat(25.00),
		Count: 5,
	})
	svc := catalog.NewService(store)

	items, err := svc.Limited(context.Background())
	require.NoError(t, err)
	// Only counts 1..5 qualify; sold out and well-stocked items don't.
	assert.Equal(t, []string{"Canvas tote bag", "Desk mat"}, titles(items))
}

func TestAddReviewRecomputesRating(t *testing.T) {
	store := memstore.New()
	ids := seedCatalog(store)
	svc := catalog.NewService(store)
	ctx := context.Background()

	reviews, err := svc.AddReview(ctx, ids["tote"], models.Review{
		Author: "Ada",
		Email:  "ada@example.com",
		Text:   "Sturdy",
		Rate:   5,
	})
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	reviews, err = svc.AddReview(ctx, ids["tote"], models.Review{Text: "Handles fray", Rate: 2})
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	// Blank author is recorded as Anonymous.
	var authors []string
	for _, r := range reviews {
		authors = append(authors, r.Author)
	}
	assert.Contains(t, authors, "Anonymous")

	p, err := store.ProductByID(ctx, ids["tote"])
	require.NoError(t, err)
	require.NotNil(t, p.Rating)
	// (5 + 2) / 2 = 3.5
	assert.True(t, p.Rating.Equal(decimal.RequireFromString("3.5")), "rating %s", p.Rating)
}

func TestAddReviewUnknownProduct(t *testing.T) {
	store := memstore.New()
	svc := catalog.NewService(store)

	_, err := svc.AddReview(context.Background(), 404, models.Review{Rate: 5})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestProductDetailCarriesRelations(t *testing.T) {
	store := memstore.New()
	ids := seedCatalog(store)
	svc := catalog.NewService(store)
	ctx := context.Background()

	_, err := svc.AddReview(ctx, ids["keyboard"], models.Review{Author: "Ada", Text: "Clacky", Rate: 4})
	require.NoError(t, err)

	d, err := svc.Product(ctx, ids["keyboard"])
	require.NoError(t, err)
	assert.Equal(t, "Mechanical keyboard", d.Title)
	assert.Len(t, d.Tags, 2)
	assert.Len(t, d.Reviews, 1)

	_, err = svc.Product(ctx, 404)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

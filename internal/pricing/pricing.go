// Package pricing computes the effective price of a product: the base price,
// or the discounted price while the product's discount window is active.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dsemenov/storefront/internal/models"
)

var hundred = decimal.NewFromInt(100)

// EffectivePrice returns the price a shopper pays for p at the given time.
// It is total: a missing or inverted discount window yields the base price.
func EffectivePrice(p *models.Product, now time.Time) decimal.Decimal {
	if SaleActive(p, now) {
		return discounted(p)
	}
	return p.Price
}

// SalePrice returns the discounted price while the window is active and nil
// otherwise. It is persisted on every product save so that display paths
// outside a request agree with EffectivePrice bit for bit.
func SalePrice(p *models.Product, now time.Time) *decimal.Decimal {
	if !SaleActive(p, now) {
		return nil
	}
	d := discounted(p)
	return &d
}

// Refresh recomputes the cached sale price on p. Repositories call it before
// persisting a product.
func Refresh(p *models.Product, now time.Time) {
	p.SalePrice = SalePrice(p, now)
}

// SaleActive reports whether now falls inside the discount window. Bounds are
// compared at day granularity; an unset bound means no discount.
func SaleActive(p *models.Product, now time.Time) bool {
	if p.DateFrom == nil || p.DateTo == nil {
		return false
	}
	day := toDay(now)
	return !day.Before(toDay(*p.DateFrom)) && !day.After(toDay(*p.DateTo))
}

// discounted rounds to one decimal place with banker's rounding, matching the
// decimal arithmetic the pricing data was produced with.
func discounted(p *models.Product) decimal.Decimal {
	return p.Price.Sub(p.Price.Mul(p.Discount).Div(hundred)).RoundBank(1)
}

func toDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

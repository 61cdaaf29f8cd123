package server

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dsemenov/storefront/internal/basket"
	"github.com/dsemenov/storefront/internal/catalog"
	"github.com/dsemenov/storefront/internal/models"
	"github.com/dsemenov/storefront/internal/order"
	"github.com/dsemenov/storefront/internal/pricing"
)

// basketItem is a basket or order line rendered as the product the shopper
// sees: the price is the effective price, the count is the line count.
type basketItem struct {
	ID           int64            `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	Count        int              `json:"count"`
	FreeDelivery bool             `json:"freeDelivery"`
	Rating       *decimal.Decimal `json:"rating"`
	Date         time.Time        `json:"date"`
}

func newBasketItem(l basket.Line, now time.Time) basketItem {
	return basketItem{
		ID:           l.Product.ID,
		Title:        l.Product.Title,
		Description:  l.Product.Description,
		Price:        pricing.EffectivePrice(l.Product, now),
		Count:        l.Count,
		FreeDelivery: l.Product.FreeDelivery,
		Rating:       l.Product.Rating,
		Date:         l.Product.CreatedAt,
	}
}

func basketItems(lines []basket.Line, now time.Time) []basketItem {
	items := make([]basketItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, newBasketItem(l, now))
	}
	return items
}

type orderPayload struct {
	ID           int64           `json:"id"`
	CreatedAt    time.Time       `json:"createdAt"`
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	DeliveryType string          `json:"deliveryType"`
	PaymentType  string          `json:"paymentType"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	Status       string          `json:"status"`
	City         string          `json:"city"`
	Address      string          `json:"address"`
	Products     []basketItem    `json:"products"`
}

func newOrderPayload(d order.Detail, now time.Time) orderPayload {
	return orderPayload{
		ID:           d.ID,
		CreatedAt:    d.CreatedAt,
		FullName:     d.FullName,
		Email:        d.Email,
		Phone:        d.Phone,
		DeliveryType: d.DeliveryType,
		PaymentType:  d.PaymentType,
		TotalCost:    d.TotalCost,
		Status:       d.Status,
		City:         d.City,
		Address:      d.Address,
		Products:     basketItems(d.Items, now),
	}
}

// productPayload is the catalog view of a product; the price field carries
// the effective price so sale items display discounted.
type productPayload struct {
	ID           int64            `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	Count        int              `json:"count"`
	FreeDelivery bool             `json:"freeDelivery"`
	Rating       *decimal.Decimal `json:"rating"`
	Date         time.Time        `json:"date"`
	Tags         []models.Tag     `json:"tags"`
	Reviews      []models.Review  `json:"reviews"`
}

func newProductPayload(d catalog.Detail, now time.Time) productPayload {
	return productPayload{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		Price:        pricing.EffectivePrice(&d.Product, now),
		Count:        d.Count,
		FreeDelivery: d.FreeDelivery,
		Rating:       d.Rating,
		Date:         d.CreatedAt,
		Tags:         d.Tags,
		Reviews:      d.Reviews,
	}
}

func productPayloads(details []catalog.Detail, now time.Time) []productPayload {
	payloads := make([]productPayload, 0, len(details))
	for _, d := range details {
		payloads = append(payloads, newProductPayload(d, now))
	}
	return payloads
}

// salePayload is the sales-listing view: base and discounted price side by
// side with the window bounds.
type salePayload struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	SalePrice decimal.Decimal `json:"salePrice"`
	DateFrom  string          `json:"dateFrom"`
	DateTo    string          `json:"dateTo"`
}

func newSalePayload(d catalog.Detail, now time.Time) salePayload {
	p := salePayload{
		ID:        d.ID,
		Title:     d.Title,
		Price:     d.Price,
		SalePrice: pricing.EffectivePrice(&d.Product, now),
	}
	if d.DateFrom != nil {
		p.DateFrom = d.DateFrom.Format("2006-01-02")
	}
	if d.DateTo != nil {
		p.DateTo = d.DateTo.Format("2006-01-02")
	}
	return p
}

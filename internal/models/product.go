package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           int64            `json:"id" db:"id"`
	Title        string           `json:"title" db:"title"`
	Description  string           `json:"description" db:"description"`
	Price        decimal.Decimal  `json:"price" db:"price"`
	Count        int              `json:"count" db:"count"`
	FreeDelivery bool             `json:"freeDelivery" db:"free_delivery"`
	Discount     decimal.Decimal  `json:"discount" db:"discount"`
	SalePrice    *decimal.Decimal `json:"salePrice" db:"sale_price"`
	DateFrom     *time.Time       `json:"dateFrom" db:"date_from"`
	DateTo       *time.Time       `json:"dateTo" db:"date_to"`
	Rating       *decimal.Decimal `json:"rating" db:"rating"`
	CreatedAt    time.Time        `json:"date" db:"created_at"`
}

type Tag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Review struct {
	ID        int64     `json:"-" db:"id"`
	ProductID int64     `json:"-" db:"product_id"`
	AuthorID  *int64    `json:"-" db:"author_id"`
	Author    string    `json:"author" db:"author"`
	Email     string    `json:"email" db:"email"`
	Text      string    `json:"text" db:"text"`
	Rate      int       `json:"rate" db:"rate"`
	CreatedAt time.Time `json:"date" db:"created_at"`
}

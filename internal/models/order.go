package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dsemenov/storefront/internal/identity"
)

// Basket is a single (owner, product) line. At most one non-archived line
// exists per owner and product; archived lines stay around as order history.
type Basket struct {
	ID        int64             `json:"id" db:"id"`
	Owner     identity.Identity `json:"-"`
	ProductID int64             `json:"-" db:"product_id"`
	Count     int               `json:"count" db:"count"`
	OrderID   *int64            `json:"-" db:"order_id"`
	Archived  bool              `json:"-" db:"archived"`
	CreatedAt time.Time         `json:"-" db:"created_at"`
}

type Order struct {
	ID           int64             `json:"id" db:"id"`
	Owner        identity.Identity `json:"-"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
	FullName     string            `json:"fullName" db:"full_name"`
	Email        string            `json:"email" db:"email"`
	Phone        string            `json:"phone" db:"phone"`
	DeliveryType string            `json:"deliveryType" db:"delivery_type"`
	PaymentType  string            `json:"paymentType" db:"payment_type"`
	TotalCost    decimal.Decimal   `json:"totalCost" db:"total_cost"`
	Status       string            `json:"status" db:"status"`
	City         string            `json:"city" db:"city"`
	Address      string            `json:"address" db:"address"`
}

// Contact is the snapshot of who the order is for, copied from the profile
// at checkout or confirmation time rather than joined live.
type Contact struct {
	FullName string
	Email    string
	Phone    string
}

const (
	OrderStatusCreated   = "created"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPaid      = "paid"
)

const (
	DeliveryOrdinary = "ordinary"
	PaymentOnline    = "online"
)

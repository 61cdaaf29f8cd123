// Package payment implements the simulated card payment step. The card rules
// are deliberately artificial (an even 8-digit number passes, no Luhn check):
// this is a payment emulator, not a gateway client.
package payment

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dsemenov/storefront/internal/identity"
	"github.com/dsemenov/storefront/internal/models"
	"github.com/dsemenov/storefront/internal/order"
)

// Error is a payment rejection reason. The set of values below is closed;
// handlers surface the text verbatim.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrMissingData       Error = "Not all data available"
	ErrCardNumber        Error = "Invalid card number"
	ErrCVV               Error = "Incorrect CVV code"
	ErrDateNotNumeric    Error = "date must be a number"
	ErrName              Error = "wrong name"
	ErrExpired           Error = "The card has expired"
	ErrDate              Error = "wrong date"
	ErrInsufficientStock Error = "Not enough goods in stock"
)

// Card is the submitted payment form.
type Card struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Month  string `json:"month"`
	Year   string `json:"year"`
	Code   string `json:"code"`
}

// Validate runs the formal card checks in fixed order, returning the first
// failure. Stock is checked separately, at application time.
func Validate(card Card, now time.Time) error {
	if card.Number == "" || card.Name == "" || card.Month == "" || card.Year == "" || card.Code == "" {
		return ErrMissingData
	}
	if len(card.Number) != 8 || !isDigits(card.Number) {
		return ErrCardNumber
	}
	if number, _ := strconv.Atoi(card.Number); number%2 != 0 {
		return ErrCardNumber
	}
	if len(card.Code) != 3 {
		return ErrCVV
	}
	if !isDigits(card.Month) || !isDigits(card.Year) {
		return ErrDateNotNumeric
	}
	if strings.TrimSpace(card.Name) == "" {
		return ErrName
	}
	month, _ := strconv.Atoi(card.Month)
	year, _ := strconv.Atoi(card.Year)
	if len(card.Year) == 2 {
		year += 2000
	}
	if month < 1 || month > 12 {
		return ErrDate
	}
	// Last calendar day of the expiry month: day zero of the next month.
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if lastDay.Before(today) {
		return ErrExpired
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// OrderStore is the slice of the order repository payment needs.
type OrderStore interface {
	ByID(ctx context.Context, id int64, owner identity.Identity) (*models.Order, error)
	ApplyPayment(ctx context.Context, orderID int64) error
}

type Service struct {
	orders OrderStore
}

func NewService(orders OrderStore) *Service {
	return &Service{orders: orders}
}

// Pay validates the card against the owner's order and, if every check
// passes, decrements stock for each order line and marks the order paid. A
// rejected payment mutates nothing.
func (s *Service) Pay(ctx context.Context, owner identity.Identity, orderID int64, card Card, now time.Time) error {
	o, err := s.orders.ByID(ctx, orderID, owner)
	if err != nil {
		return err
	}
	if err := Validate(card, now); err != nil {
		return err
	}
	if err := s.orders.ApplyPayment(ctx, o.ID); err != nil {
		if errors.Is(err, order.ErrInsufficientStock) {
			return ErrInsufficientStock
		}
		return err
	}
	return nil
}

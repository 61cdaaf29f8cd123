package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dsemenov/storefront/internal/identity"
	"github.com/dsemenov/storefront/internal/models"
	"github.com/dsemenov/storefront/internal/order"
)

const orderColumns = `id, user_id, token, created_at, full_name, email, phone,
	delivery_type, payment_type, total_cost, status, city, address`

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var userID sql.NullInt64
	var token sql.NullString

	err := row.Scan(
		&o.ID, &userID, &token, &o.CreatedAt, &o.FullName, &o.Email, &o.Phone,
		&o.DeliveryType, &o.PaymentType, &o.TotalCost, &o.Status, &o.City, &o.Address,
	)
	if err != nil {
		return nil, err
	}
	o.Owner = decodeOwner(userID, token)
	return &o, nil
}

// CreateFromBasket inserts the order and archives the consumed basket lines
// in one transaction so a crash cannot leave a paid-for basket active.
func (s *Store) CreateFromBasket(ctx context.Context, o *models.Order, lineIDs []int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	userID, token := ownerValues(o.Owner)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, token, full_name, email, phone,
		                    delivery_type, payment_type, total_cost, status, city, address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, token, o.FullName, o.Email, o.Phone,
		o.DeliveryType, o.PaymentType, o.TotalCost, o.Status, o.City, o.Address)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(lineIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(lineIDs)), ",")
		args := make([]interface{}, 0, len(lineIDs)+1)
		args = append(args, orderID)
		for _, id := range lineIDs {
			args = append(args, id)
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE baskets SET archived = TRUE, order_id = ? WHERE id IN ("+placeholders+")", args...)
		if err != nil {
			return 0, fmt.Errorf("failed to archive basket lines: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	o.ID = orderID
	return orderID, nil
}

func (s *Store) ByOwner(ctx context.Context, owner identity.Identity) ([]models.Order, error) {
	predicate, arg := ownerPredicate(owner)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE "+predicate+" ORDER BY id DESC", arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *Store) ByID(ctx context.Context, id int64, owner identity.Identity) (*models.Order, error) {
	predicate, arg := ownerPredicate(owner)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = ? AND "+predicate, id, arg)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return o, nil
}

func (s *Store) Update(ctx context.Context, o *models.Order) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET full_name = ?, email = ?, phone = ?, delivery_type = ?,
		    payment_type = ?, total_cost = ?, status = ?, city = ?, address = ?
		WHERE id = ?
	`, o.FullName, o.Email, o.Phone, o.DeliveryType,
		o.PaymentType, o.TotalCost, o.Status, o.City, o.Address, o.ID)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (s *Store) Lines(ctx context.Context, orderID int64) ([]models.Basket, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+basketColumns+" FROM baskets WHERE order_id = ? ORDER BY id", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	defer rows.Close()

	var lines []models.Basket
	for rows.Next() {
		b, err := scanBasket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, *b)
	}
	return lines, rows.Err()
}

// ApplyPayment verifies stock for every order line, decrements the product
// counts and marks the order paid, all in one transaction. The order row and
// its products are locked so two racing payments cannot both pass the stock
// check.
func (s *Store) ApplyPayment(ctx context.Context, orderID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		"SELECT status FROM orders WHERE id = ? FOR UPDATE", orderID).Scan(&status)
	if err == sql.ErrNoRows {
		return order.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock order: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT b.product_id, b.count, p.count
		FROM baskets b
		JOIN products p ON p.id = b.product_id
		WHERE b.order_id = ?
		ORDER BY b.id
		FOR UPDATE
	`, orderID)
	if err != nil {
		return fmt.Errorf("failed to lock order lines: %w", err)
	}

	type decrement struct {
		productID int64
		count     int
	}
	var decrements []decrement
	for rows.Next() {
		var productID int64
		var lineCount, stock int
		if err := rows.Scan(&productID, &lineCount, &stock); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		if lineCount > stock {
			rows.Close()
			return order.ErrInsufficientStock
		}
		decrements = append(decrements, decrement{productID: productID, count: lineCount})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, d := range decrements {
		_, err := tx.ExecContext(ctx,
			"UPDATE products SET count = count - ? WHERE id = ?", d.count, d.productID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE orders SET status = ? WHERE id = ?", models.OrderStatusPaid, orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	return tx.Commit()
}

// ReassignOrders moves all of the token's orders to the user.
func (s *Store) ReassignOrders(ctx context.Context, token string, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET user_id = ?, token = NULL WHERE token = ?", userID, token)
	if err != nil {
		return fmt.Errorf("failed to reassign orders: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dsemenov/storefront/internal/basket"
	"github.com/dsemenov/storefront/internal/identity"
	"github.com/dsemenov/storefront/internal/models"
)

func scanBasket(row rowScanner) (*models.Basket, error) {
	var b models.Basket
	var userID, orderID sql.NullInt64
	var token sql.NullString

	err := row.Scan(&b.ID, &userID, &token, &b.ProductID, &b.Count, &orderID, &b.Archived, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Owner = decodeOwner(userID, token)
	if orderID.Valid {
		b.OrderID = &orderID.Int64
	}
	return &b, nil
}

const basketColumns = "id, user_id, token, product_id, count, order_id, archived, created_at"

func (s *Store) ActiveLines(ctx context.Context, owner identity.Identity) ([]models.Basket, error) {
	predicate, arg := ownerPredicate(owner)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+basketColumns+" FROM baskets WHERE archived = FALSE AND "+predicate+" ORDER BY id", arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list basket lines: %w", err)
	}
	defer rows.Close()

	var lines []models.Basket
	for rows.Next() {
		b, err := scanBasket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan basket line: %w", err)
		}
		lines = append(lines, *b)
	}
	return lines, rows.Err()
}

func (s *Store) ActiveLine(ctx context.Context, owner identity.Identity, productID int64) (*models.Basket, error) {
	predicate, arg := ownerPredicate(owner)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+basketColumns+" FROM baskets WHERE archived = FALSE AND product_id = ? AND "+predicate,
		productID, arg)
	b, err := scanBasket(row)
	if err == sql.ErrNoRows {
		return nil, basket.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load basket line: %w", err)
	}
	return b, nil
}

// GetOrCreateLine finds or inserts the owner's active line for a product.
// The lookup locks the matching row inside a transaction so concurrent adds
// for the same (owner, product) cannot create two active lines.
func (s *Store) GetOrCreateLine(ctx context.Context, owner identity.Identity, productID int64) (*models.Basket, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	predicate, arg := ownerPredicate(owner)
	row := tx.QueryRowContext(ctx,
		"SELECT "+basketColumns+" FROM baskets WHERE archived = FALSE AND product_id = ? AND "+predicate+" FOR UPDATE",
		productID, arg)
	b, err := scanBasket(row)
	if err == nil {
		return b, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load basket line: %w", err)
	}

	userID, token := ownerValues(owner)
	res, err := tx.ExecContext(ctx,
		"INSERT INTO baskets (user_id, token, product_id, count) VALUES (?, ?, ?, 0)",
		userID, token, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert basket line: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &models.Basket{ID: id, Owner: owner, ProductID: productID}, nil
}

func (s *Store) SaveLine(ctx context.Context, line *models.Basket) error {
	_, err := s.db.ExecContext(ctx, "UPDATE baskets SET count = ? WHERE id = ?", line.Count, line.ID)
	if err != nil {
		return fmt.Errorf("failed to save basket line: %w", err)
	}
	return nil
}

func (s *Store) DeleteLine(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM baskets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete basket line: %w", err)
	}
	return nil
}

// ArchiveActiveLines archives the user's active basket wholesale; the
// identity merge runs it before re-owning the anonymous lines.
func (s *Store) ArchiveActiveLines(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE baskets SET archived = TRUE WHERE archived = FALSE AND user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to archive basket lines: %w", err)
	}
	return nil
}

// ReassignLines moves the token's active lines to the user.
func (s *Store) ReassignLines(ctx context.Context, token string, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE baskets SET user_id = ?, token = NULL WHERE archived = FALSE AND token = ?", userID, token)
	if err != nil {
		return fmt.Errorf("failed to reassign basket lines: %w", err)
	}
	return nil
}

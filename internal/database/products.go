package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dsemenov/storefront/internal/catalog"
	"github.com/dsemenov/storefront/internal/models"
	"github.com/dsemenov/storefront/internal/pricing"
)

const productColumns = `id, title, description, price, count, free_delivery,
	discount, sale_price, date_from, date_to, rating, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var description sql.NullString
	var salePrice, rating decimal.NullDecimal
	var dateFrom, dateTo sql.NullTime

	err := row.Scan(
		&p.ID, &p.Title, &description, &p.Price, &p.Count, &p.FreeDelivery,
		&p.Discount, &salePrice, &dateFrom, &dateTo, &rating, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	if salePrice.Valid {
		p.SalePrice = &salePrice.Decimal
	}
	if rating.Valid {
		p.Rating = &rating.Decimal
	}
	if dateFrom.Valid {
		p.DateFrom = &dateFrom.Time
	}
	if dateTo.Valid {
		p.DateTo = &dateTo.Time
	}
	return &p, nil
}

func (s *Store) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return p, nil
}

// SaveProduct persists the product, refreshing the cached sale price so the
// stored value always agrees with the pricing engine.
func (s *Store) SaveProduct(ctx context.Context, p *models.Product) error {
	pricing.Refresh(p, time.Now())

	var salePrice decimal.NullDecimal
	if p.SalePrice != nil {
		salePrice = decimal.NullDecimal{Decimal: *p.SalePrice, Valid: true}
	}
	var rating decimal.NullDecimal
	if p.Rating != nil {
		rating = decimal.NullDecimal{Decimal: *p.Rating, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET title = ?, description = ?, price = ?, count = ?, free_delivery = ?,
		    discount = ?, sale_price = ?, date_from = ?, date_to = ?, rating = ?
		WHERE id = ?
	`, p.Title, p.Description, p.Price, p.Count, p.FreeDelivery,
		p.Discount, salePrice, p.DateFrom, p.DateTo, rating, p.ID)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// InsertProduct stores a new product; the seed command uses it.
func (s *Store) InsertProduct(ctx context.Context, p *models.Product) (int64, error) {
	pricing.Refresh(p, time.Now())

	var salePrice decimal.NullDecimal
	if p.SalePrice != nil {
		salePrice = decimal.NullDecimal{Decimal: *p.SalePrice, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO products (title, description, price, count, free_delivery,
		                      discount, sale_price, date_from, date_to)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Title, p.Description, p.Price, p.Count, p.FreeDelivery,
		p.Discount, salePrice, p.DateFrom, p.DateTo)
	if err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}
	return res.LastInsertId()
}

var sortColumns = map[string]string{
	catalog.SortDate:    "created_at",
	catalog.SortPrice:   "price",
	catalog.SortRating:  "COALESCE(rating, 0)",
	catalog.SortCount:   "count",
	catalog.SortReviews: "(SELECT COUNT(*) FROM reviews r WHERE r.product_id = products.id)",
}

func (s *Store) ListProducts(ctx context.Context, f catalog.Filter) ([]models.Product, error) {
	where := []string{"1 = 1"}
	var args []interface{}

	if f.Name != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.MinPrice != nil && f.MaxPrice != nil {
		where = append(where, "price BETWEEN ? AND ?")
		args = append(args, *f.MinPrice, *f.MaxPrice)
	}
	if f.FreeDelivery {
		where = append(where, "free_delivery = TRUE")
	}
	if f.Available {
		where = append(where, "count > 0")
	}
	if f.LowStock {
		where = append(where, "count BETWEEN 1 AND 5")
	}
	if len(f.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Tags)), ",")
		where = append(where,
			"id IN (SELECT product_id FROM product_tags WHERE tag_id IN ("+placeholders+"))")
		for _, tag := range f.Tags {
			args = append(args, tag)
		}
	}

	orderBy, ok := sortColumns[f.Sort]
	if !ok {
		orderBy = sortColumns[catalog.SortDate]
	}
	direction := "ASC"
	if f.Desc {
		direction = "DESC"
	}

	query := "SELECT " + productColumns + " FROM products WHERE " +
		strings.Join(where, " AND ") + " ORDER BY " + orderBy + " " + direction

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) TagsByPopularity(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM tags t
		LEFT JOIN product_tags pt ON pt.tag_id = t.id
		GROUP BY t.id, t.name
		ORDER BY COUNT(pt.product_id) DESC, t.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Store) TagsFor(ctx context.Context, productID int64) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM tags t
		JOIN product_tags pt ON pt.tag_id = t.id
		WHERE pt.product_id = ?
		ORDER BY t.name ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// AddTag stores a tag and its product links; the seed command uses it.
func (s *Store) AddTag(ctx context.Context, name string, productIDs ...int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, productID := range productIDs {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO product_tags (product_id, tag_id) VALUES (?, ?)", productID, id)
		if err != nil {
			return 0, fmt.Errorf("failed to link tag: %w", err)
		}
	}
	return id, nil
}

func (s *Store) ReviewsFor(ctx context.Context, productID int64) ([]models.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, author_id, author, email, text, rate, created_at
		FROM reviews WHERE product_id = ? ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		var authorID sql.NullInt64
		var text sql.NullString
		err := rows.Scan(&r.ID, &r.ProductID, &authorID, &r.Author, &r.Email, &text, &r.Rate, &r.CreatedAt)
		if err != nil {
			return nil, err
		}
		if authorID.Valid {
			r.AuthorID = &authorID.Int64
		}
		r.Text = text.String
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *Store) AddReview(ctx context.Context, r *models.Review) error {
	var authorID sql.NullInt64
	if r.AuthorID != nil {
		authorID = sql.NullInt64{Int64: *r.AuthorID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (product_id, author_id, author, email, text, rate)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ProductID, authorID, r.Author, r.Email, r.Text, r.Rate)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	r.ID, err = res.LastInsertId()
	return err
}

func (s *Store) AverageRating(ctx context.Context, productID int64) (*decimal.Decimal, error) {
	var avg decimal.NullDecimal
	err := s.db.QueryRowContext(ctx,
		"SELECT ROUND(AVG(rate), 1) FROM reviews WHERE product_id = ?", productID).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("failed to average rating: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Decimal, nil
}

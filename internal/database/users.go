package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dsemenov/storefront/internal/auth"
	"github.com/dsemenov/storefront/internal/models"
)

const userColumns = "id, username, first_name, last_name, password_hash, created_at"

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, first_name, last_name, password_hash)
		VALUES (?, ?, ?, ?)
	`, u.Username, u.FirstName, u.LastName, u.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, auth.ErrUsernameTaken
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (s *Store) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", hash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *Store) CreateProfile(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT IGNORE INTO profiles (user_id) VALUES (?)", userID)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (s *Store) GetOrCreateProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	if err := s.CreateProfile(ctx, userID); err != nil {
		return nil, err
	}
	var p models.Profile
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, full_name, email, phone FROM profiles WHERE user_id = ?", userID).
		Scan(&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *models.Profile) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET full_name = ?, email = ?, phone = ? WHERE id = ?",
		p.FullName, p.Email, p.Phone, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

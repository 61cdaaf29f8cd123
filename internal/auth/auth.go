// Package auth covers account registration, login and the identity merge
// that folds a session's anonymous shopping history into the account.
package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/dsemenov/storefront/internal/models"
)

var (
	// ErrUsernameTaken is returned by Register for a duplicate username.
	ErrUsernameTaken = errors.New("auth: username already taken")
	// ErrInvalidCredentials is returned by Login on a wrong password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUserNotFound is returned when the account does not exist.
	ErrUserNotFound = errors.New("auth: user not found")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
}

// ProfileStore creates the empty profile that accompanies a new account.
type ProfileStore interface {
	CreateProfile(ctx context.Context, userID int64) error
}

type Service struct {
	users    UserStore
	profiles ProfileStore
	baskets  BasketMerger
	orders   OrderMerger
}

func NewService(users UserStore, profiles ProfileStore, baskets BasketMerger, orders OrderMerger) *Service {
	return &Service{users: users, profiles: profiles, baskets: baskets, orders: orders}
}

// Register creates an account with a bcrypt password hash and an empty
// profile.
func (s *Service) Register(ctx context.Context, c Credentials) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     c.Username,
		FirstName:    c.Name,
		PasswordHash: string(hash),
	}
	id, err := s.users.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	if err := s.profiles.CreateProfile(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the password against the stored hash.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, updated string) error {
	u, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(updated), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

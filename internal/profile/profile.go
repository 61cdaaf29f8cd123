// Package profile manages the contact details attached to an account.
package profile

import (
	"context"
	"strings"

	"github.com/dsemenov/storefront/internal/models"
)

// Repository persists profiles.
type Repository interface {
	// GetOrCreateProfile returns the user's profile, creating an empty one
	// on first access.
	GetOrCreateProfile(ctx context.Context, userID int64) (*models.Profile, error)
	// UpdateProfile persists changed profile fields.
	UpdateProfile(ctx context.Context, p *models.Profile) error
}

// UserStore resolves the account behind a profile.
type UserStore interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

type Service struct {
	profiles Repository
	users    UserStore
}

func NewService(profiles Repository, users UserStore) *Service {
	return &Service{profiles: profiles, users: users}
}

// Get returns the user's profile, creating it on first access.
func (s *Service) Get(ctx context.Context, userID int64) (*models.Profile, error) {
	return s.profiles.GetOrCreateProfile(ctx, userID)
}

// Update replaces the profile's contact fields.
func (s *Service) Update(ctx context.Context, userID int64, fullName, email, phone string) (*models.Profile, error) {
	p, err := s.profiles.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.FullName = fullName
	p.Email = email
	p.Phone = phone
	if err := s.profiles.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Contact builds the contact snapshot orders copy at checkout. A blank
// profile full name falls back to the account's own name.
func (s *Service) Contact(ctx context.Context, userID int64) (models.Contact, error) {
	p, err := s.profiles.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return models.Contact{}, err
	}
	fullName := p.FullName
	if strings.TrimSpace(fullName) == "" {
		u, err := s.users.UserByID(ctx, userID)
		if err != nil {
			return models.Contact{}, err
		}
		fullName = u.FullName()
	}
	return models.Contact{FullName: fullName, Email: p.Email, Phone: p.Phone}, nil
}

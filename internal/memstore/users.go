package memstore

import (
	"context"
	"time"

	"github.com/dsemenov/storefront/internal/auth"
	"github.com/dsemenov/storefront/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return 0, auth.ErrUsernameTaken
		}
	}
	u.ID = s.nextID()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	copied := *u
	s.users[u.ID] = &copied
	return u.ID, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *Store) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *Store) CreateProfile(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.UserID == userID {
			return nil
		}
	}
	id := s.nextID()
	s.profiles[id] = &models.Profile{ID: id, UserID: userID}
	return nil
}

func (s *Store) GetOrCreateProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	id := s.nextID()
	p := &models.Profile{ID: id, UserID: userID}
	s.profiles[id] = p
	copied := *p
	return &copied, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; !ok {
		return auth.ErrUserNotFound
	}
	copied := *p
	s.profiles[p.ID] = &copied
	return nil
}

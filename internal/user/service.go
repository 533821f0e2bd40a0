package user

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// Service handles user business logic
type Service struct {
	repo *Repository
}

// NewService creates a new user service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new user
func (s *Service) Create(ctx context.Context, username, email string) (*User, error) {
	return s.repo.Create(ctx, username, email)
}

// GetByID retrieves a user
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

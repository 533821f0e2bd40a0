package roster

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrGroupNotFound = errors.New("group not found")
)

// Service handles roster business logic
type Service struct {
	repo *Repository
}

// NewService creates a new roster service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateGroup creates a new group
func (s *Service) CreateGroup(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
	return s.repo.CreateGroup(ctx, req)
}

// GetGroupByID retrieves a group
func (s *Service) GetGroupByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// AddMember attaches an existing user to a group
func (s *Service) AddMember(ctx context.Context, groupID, userID int64) error {
	if _, err := s.GetGroupByID(ctx, groupID); err != nil {
		return err
	}
	return s.repo.AddMember(ctx, groupID, userID)
}

// ListParticipants returns every member and guest of a group, members first.
// This is the roster downstream split computation works against.
func (s *Service) ListParticipants(ctx context.Context, groupID int64) ([]*Participant, error) {
	if _, err := s.GetGroupByID(ctx, groupID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	guests, err := s.repo.ListGuests(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return append(members, guests...), nil
}

// CreateGuest adds a guest participant to a group
func (s *Service) CreateGuest(ctx context.Context, groupID int64, name string) (*Guest, error) {
	if _, err := s.GetGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.CreateGuest(ctx, groupID, name)
}

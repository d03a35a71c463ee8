package users

import (
	"context"
	"fmt"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// Service handles user account management.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns users matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown role %q", shared.ErrInvalidInput, filter.Role)
	}
	return s.repo.List(ctx, filter)
}

// Get loads one user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, fmt.Errorf("%w: invalid user id", shared.ErrInvalidInput)
	}
	return s.repo.Get(ctx, id)
}

// UpdateProfile applies partial profile edits.
func (s *Service) UpdateProfile(ctx context.Context, id int64, input UpdateInput) (User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Address != nil {
		user.Address = input.Address
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return s.repo.Get(ctx, id)
}

// SetRole changes a user's role. Admin only through the policy table.
func (s *Service) SetRole(ctx context.Context, id int64, role shared.Role) (User, error) {
	if !role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", shared.ErrInvalidInput, role)
	}
	if err := s.repo.SetRole(ctx, id, role); err != nil {
		return User{}, err
	}
	return s.repo.Get(ctx, id)
}

// SetActive toggles account access. Deactivated accounts cannot log in.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (User, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return User{}, err
	}
	return s.repo.Get(ctx, id)
}

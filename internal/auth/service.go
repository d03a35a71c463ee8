package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/users"
)

// RegisterInput carries a new account request. Self registration always
// produces a customer; staff and admin roles are granted by an admin
// afterwards.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
	Address   *string
}

// Service wraps authentication business rules.
type Service struct {
	repo users.Repository
}

// NewService constructs a new Service.
func NewService(repo users.Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a customer account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, input RegisterInput) (users.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Username == "" || input.Email == "" {
		return users.User{}, fmt.Errorf("%w: username and email are required", shared.ErrInvalidInput)
	}
	if len(input.Password) < 8 {
		return users.User{}, fmt.Errorf("%w: password must be at least 8 characters", shared.ErrInvalidInput)
	}
	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return users.User{}, fmt.Errorf("%w: email already registered", shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return users.User{}, err
	}
	if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		return users.User{}, fmt.Errorf("%w: username already taken", shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return users.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, err
	}
	return s.repo.Create(ctx, users.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Address:      input.Address,
		Role:         shared.RoleCustomer,
	})
}

// Authenticate validates email/password credentials. Unknown accounts,
// deactivated accounts and wrong passwords all produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

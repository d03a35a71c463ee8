package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// Service handles supplier business rules.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Supplier, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, fmt.Errorf("%w: invalid supplier id", shared.ErrInvalidInput)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return Supplier{}, fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	return s.repo.Create(ctx, supplier)
}

func (s *Service) Update(ctx context.Context, id int64, updates Supplier) (Supplier, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Supplier{}, err
	}
	if name := strings.TrimSpace(updates.Name); name != "" {
		existing.Name = name
	}
	if updates.ContactPerson != nil {
		existing.ContactPerson = updates.ContactPerson
	}
	if updates.Email != nil {
		existing.Email = updates.Email
	}
	if updates.Phone != nil {
		existing.Phone = updates.Phone
	}
	if updates.Address != nil {
		existing.Address = updates.Address
	}
	if updates.PaymentTerms != nil {
		existing.PaymentTerms = updates.PaymentTerms
	}
	if updates.DeliverySchedule != nil {
		existing.DeliverySchedule = updates.DeliverySchedule
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return Supplier{}, err
	}
	return s.repo.Get(ctx, id)
}

// Deactivate soft-deletes a supplier that still has products; suppliers with
// no product references are removed outright.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		existing.IsActive = false
		return s.repo.Update(ctx, existing)
	}
	return s.repo.Delete(ctx, id)
}

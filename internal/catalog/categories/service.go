package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// Service handles category business rules.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Get returns a single category.
func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, fmt.Errorf("%w: invalid category id", shared.ErrInvalidInput)
	}
	return s.repo.Get(ctx, id)
}

// Create inserts a new category after validating name uniqueness and parent
// linkage.
func (s *Service) Create(ctx context.Context, category Category) (Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return Category{}, fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if _, err := s.repo.GetByName(ctx, category.Name); err == nil {
		return Category{}, fmt.Errorf("%w: category name already exists", shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Category{}, err
	}
	if category.ParentID != nil {
		if _, err := s.repo.Get(ctx, *category.ParentID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Category{}, fmt.Errorf("%w: parent category not found", shared.ErrInvalidInput)
			}
			return Category{}, err
		}
	}
	return s.repo.Create(ctx, category)
}

// Update mutates a category. Re-parenting is rejected when it would introduce
// a cycle in the adjacency list.
func (s *Service) Update(ctx context.Context, id int64, category Category) (Category, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if name := strings.TrimSpace(category.Name); name != "" {
		if other, err := s.repo.GetByName(ctx, name); err == nil && other.ID != id {
			return Category{}, fmt.Errorf("%w: category name already exists", shared.ErrConflict)
		} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return Category{}, err
		}
		existing.Name = name
	}
	if category.Description != nil {
		existing.Description = category.Description
	}
	if category.ParentID != nil {
		if err := s.checkAcyclic(ctx, id, *category.ParentID); err != nil {
			return Category{}, err
		}
		existing.ParentID = category.ParentID
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return Category{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a category. Categories still referenced by products are
// protected.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: category has products", shared.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}

// checkAcyclic walks the parent chain from the proposed parent upward and
// fails if it reaches the category being updated.
func (s *Service) checkAcyclic(ctx context.Context, id, parentID int64) error {
	if parentID == id {
		return fmt.Errorf("%w: category cannot be its own parent", shared.ErrInvalidInput)
	}
	seen := map[int64]bool{id: true}
	current := parentID
	for current != 0 {
		if seen[current] {
			return fmt.Errorf("%w: category hierarchy would form a cycle", shared.ErrInvalidInput)
		}
		seen[current] = true
		parent, err := s.repo.Get(ctx, current)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: parent category not found", shared.ErrInvalidInput)
			}
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		current = *parent.ParentID
	}
	return nil
}

package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/categories"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/suppliers"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// Service handles product business rules.
type Service struct {
	repo         Repository
	categoryRepo categories.Repository
	supplierRepo suppliers.Repository
}

// NewService builds Service.
func NewService(repo Repository, categoryRepo categories.Repository, supplierRepo suppliers.Repository) *Service {
	return &Service{repo: repo, categoryRepo: categoryRepo, supplierRepo: supplierRepo}
}

// List returns active products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	return s.repo.List(ctx, filter)
}

// Get returns an active product. Deactivated products behave as missing for
// catalog consumers.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", shared.ErrInvalidInput)
	}
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !product.IsActive {
		return Product{}, shared.ErrNotFound
	}
	return product, nil
}

// Create inserts a new product after checking SKU uniqueness and that the
// referenced category and supplier exist.
func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	product.SKU = strings.TrimSpace(product.SKU)
	if product.Name == "" || product.SKU == "" {
		return Product{}, fmt.Errorf("%w: name and sku are required", shared.ErrInvalidInput)
	}
	if product.CostPrice.IsNegative() || product.SellingPrice.IsNegative() {
		return Product{}, fmt.Errorf("%w: prices must not be negative", shared.ErrInvalidInput)
	}
	if _, err := s.repo.GetBySKU(ctx, product.SKU); err == nil {
		return Product{}, fmt.Errorf("%w: sku already exists", shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Product{}, err
	}
	if _, err := s.categoryRepo.Get(ctx, product.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Product{}, fmt.Errorf("%w: category not found", shared.ErrInvalidInput)
		}
		return Product{}, err
	}
	if _, err := s.supplierRepo.Get(ctx, product.SupplierID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Product{}, fmt.Errorf("%w: supplier not found", shared.ErrInvalidInput)
		}
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

// Update mutates product fields. The SKU is immutable once assigned.
func (s *Service) Update(ctx context.Context, id int64, updates Product) (Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if name := strings.TrimSpace(updates.Name); name != "" {
		existing.Name = name
	}
	if updates.Description != nil {
		existing.Description = updates.Description
	}
	if updates.Brand != nil {
		existing.Brand = updates.Brand
	}
	if updates.Size != nil {
		existing.Size = updates.Size
	}
	if updates.Color != nil {
		existing.Color = updates.Color
	}
	if updates.ImageURL != nil {
		existing.ImageURL = updates.ImageURL
	}
	if !updates.CostPrice.IsZero() || !updates.SellingPrice.IsZero() {
		if updates.CostPrice.IsNegative() || updates.SellingPrice.IsNegative() {
			return Product{}, fmt.Errorf("%w: prices must not be negative", shared.ErrInvalidInput)
		}
		if !updates.CostPrice.IsZero() {
			existing.CostPrice = updates.CostPrice
		}
		if !updates.SellingPrice.IsZero() {
			existing.SellingPrice = updates.SellingPrice
		}
	}
	if updates.CategoryID > 0 {
		if _, err := s.categoryRepo.Get(ctx, updates.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Product{}, fmt.Errorf("%w: category not found", shared.ErrInvalidInput)
			}
			return Product{}, err
		}
		existing.CategoryID = updates.CategoryID
	}
	if updates.SupplierID > 0 {
		if _, err := s.supplierRepo.Get(ctx, updates.SupplierID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Product{}, fmt.Errorf("%w: supplier not found", shared.ErrInvalidInput)
			}
			return Product{}, err
		}
		existing.SupplierID = updates.SupplierID
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete deactivates a product that has been purchased; products never
// referenced by an order are removed outright. Referenced products are kept
// for historical price integrity.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.repo.CountPurchaseItems(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		existing.IsActive = false
		return s.repo.Update(ctx, existing)
	}
	return s.repo.Delete(ctx, id)
}

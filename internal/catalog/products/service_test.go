package products

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/categories"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/suppliers"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

type memoryRepo struct {
	nextID        int64
	products      map[int64]Product
	purchaseItems map[int64]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, products: map[int64]Product{}, purchaseItems: map[int64]int{}}
}

func (m *memoryRepo) List(_ context.Context, _ ListFilter) ([]Product, int, error) {
	var out []Product
	for _, p := range m.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) GetBySKU(_ context.Context, sku string) (Product, error) {
	for _, p := range m.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return Product{}, shared.ErrNotFound
}

func (m *memoryRepo) Create(_ context.Context, product Product) (Product, error) {
	product.ID = m.nextID
	m.nextID++
	product.IsActive = true
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	m.products[product.ID] = product
	return product, nil
}

func (m *memoryRepo) Update(_ context.Context, product Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return shared.ErrNotFound
	}
	product.UpdatedAt = time.Now()
	m.products[product.ID] = product
	return nil
}

func (m *memoryRepo) CountPurchaseItems(_ context.Context, id int64) (int, error) {
	return m.purchaseItems[id], nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

type stubCategories struct{ ids map[int64]bool }

func (s stubCategories) List(context.Context) ([]categories.Category, error) { return nil, nil }
func (s stubCategories) Get(_ context.Context, id int64) (categories.Category, error) {
	if !s.ids[id] {
		return categories.Category{}, shared.ErrNotFound
	}
	return categories.Category{ID: id}, nil
}
func (s stubCategories) GetByName(context.Context, string) (categories.Category, error) {
	return categories.Category{}, shared.ErrNotFound
}
func (s stubCategories) Create(_ context.Context, c categories.Category) (categories.Category, error) {
	return c, nil
}
func (s stubCategories) Update(context.Context, categories.Category) error { return nil }
func (s stubCategories) Delete(context.Context, int64) error              { return nil }
func (s stubCategories) CountProducts(context.Context, int64) (int, error) {
	return 0, nil
}

type stubSuppliers struct{ ids map[int64]bool }

func (s stubSuppliers) List(context.Context, bool) ([]suppliers.Supplier, error) { return nil, nil }
func (s stubSuppliers) Get(_ context.Context, id int64) (suppliers.Supplier, error) {
	if !s.ids[id] {
		return suppliers.Supplier{}, shared.ErrNotFound
	}
	return suppliers.Supplier{ID: id}, nil
}
func (s stubSuppliers) Create(_ context.Context, sup suppliers.Supplier) (suppliers.Supplier, error) {
	return sup, nil
}
func (s stubSuppliers) Update(context.Context, suppliers.Supplier) error { return nil }
func (s stubSuppliers) Delete(context.Context, int64) error              { return nil }
func (s stubSuppliers) CountProducts(context.Context, int64) (int, error) {
	return 0, nil
}

func newTestService(repo *memoryRepo) *Service {
	return NewService(repo,
		stubCategories{ids: map[int64]bool{1: true}},
		stubSuppliers{ids: map[int64]bool{1: true}})
}

func validProduct() Product {
	return Product{
		Name:         "Performance Tee",
		SKU:          "TOP-TEE-001",
		CostPrice:    decimal.RequireFromString("8.50"),
		SellingPrice: decimal.RequireFromString("24.99"),
		CategoryID:   1,
		SupplierID:   1,
	}
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validProduct())
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	missing := validProduct()
	missing.SKU = "  "
	_, err := svc.Create(ctx, missing)
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	negative := validProduct()
	negative.CostPrice = decimal.RequireFromString("-1")
	_, err = svc.Create(ctx, negative)
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	badCategory := validProduct()
	badCategory.CategoryID = 99
	_, err = svc.Create(ctx, badCategory)
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	badSupplier := validProduct()
	badSupplier.SupplierID = 99
	_, err = svc.Create(ctx, badSupplier)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestGetHidesInactiveProducts(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)

	p := repo.products[created.ID]
	p.IsActive = false
	repo.products[created.ID] = p

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteDeactivatesWhenPurchased(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)
	repo.purchaseItems[created.ID] = 2

	require.NoError(t, svc.Delete(ctx, created.ID))

	// The row survives for historical order lines but disappears from the
	// catalog surface.
	stored, ok := repo.products[created.ID]
	require.True(t, ok)
	require.False(t, stored.IsActive)

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteRemovesUnpurchasedProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, ok := repo.products[created.ID]
	require.False(t, ok)
}

func TestUpdateKeepsSKUAndValidatesPrices(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, Product{
		Name:         "Performance Tee v2",
		SKU:          "SHOULD-NOT-CHANGE",
		SellingPrice: decimal.RequireFromString("27.99"),
	})
	require.NoError(t, err)
	require.Equal(t, "Performance Tee v2", updated.Name)
	require.Equal(t, "TOP-TEE-001", updated.SKU)
	require.True(t, updated.SellingPrice.Equal(decimal.RequireFromString("27.99")))
	require.True(t, updated.CostPrice.Equal(decimal.RequireFromString("8.50")))

	_, err = svc.Update(ctx, created.ID, Product{SellingPrice: decimal.RequireFromString("-5")})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

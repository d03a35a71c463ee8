package categories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

type memoryRepo struct {
	nextID     int64
	categories map[int64]Category
	products   map[int64]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, categories: map[int64]Category{}, products: map[int64]int{}}
}

func (m *memoryRepo) List(context.Context) ([]Category, error) {
	out := make([]Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) GetByName(_ context.Context, name string) (Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return Category{}, shared.ErrNotFound
}

func (m *memoryRepo) Create(_ context.Context, category Category) (Category, error) {
	category.ID = m.nextID
	m.nextID++
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.categories[category.ID] = category
	return category, nil
}

func (m *memoryRepo) Update(_ context.Context, category Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return shared.ErrNotFound
	}
	category.UpdatedAt = time.Now()
	m.categories[category.ID] = category
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *memoryRepo) CountProducts(_ context.Context, id int64) (int, error) {
	return m.products[id], nil
}

func seedChain(t *testing.T, svc *Service) (Category, Category, Category) {
	t.Helper()
	ctx := context.Background()
	root, err := svc.Create(ctx, Category{Name: "Apparel"})
	require.NoError(t, err)
	mid, err := svc.Create(ctx, Category{Name: "Tops", ParentID: &root.ID})
	require.NoError(t, err)
	leaf, err := svc.Create(ctx, Category{Name: "Tanks", ParentID: &mid.ID})
	require.NoError(t, err)
	return root, mid, leaf
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Category{Name: "Footwear"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Category{Name: "Footwear"})
	require.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.Create(ctx, Category{Name: "   "})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateRequiresExistingParent(t *testing.T) {
	svc := NewService(newMemoryRepo())
	missing := int64(99)

	_, err := svc.Create(context.Background(), Category{Name: "Orphan", ParentID: &missing})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestUpdateRejectsSelfParent(t *testing.T) {
	svc := NewService(newMemoryRepo())
	root, _, _ := seedChain(t, svc)

	_, err := svc.Update(context.Background(), root.ID, Category{ParentID: &root.ID})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestUpdateRejectsCycle(t *testing.T) {
	svc := NewService(newMemoryRepo())
	root, _, leaf := seedChain(t, svc)

	// Re-parenting the root under its grandchild would close the loop.
	_, err := svc.Update(context.Background(), root.ID, Category{ParentID: &leaf.ID})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestUpdateAllowsValidReparent(t *testing.T) {
	svc := NewService(newMemoryRepo())
	root, _, leaf := seedChain(t, svc)
	ctx := context.Background()

	other, err := svc.Create(ctx, Category{Name: "Clearance", ParentID: &root.ID})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, leaf.ID, Category{ParentID: &other.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentID)
	require.Equal(t, other.ID, *updated.ParentID)
}

func TestDeleteProtectsCategoriesWithProducts(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	cat, err := svc.Create(ctx, Category{Name: "Footwear"})
	require.NoError(t, err)
	repo.products[cat.ID] = 3

	err = svc.Delete(ctx, cat.ID)
	require.ErrorIs(t, err, shared.ErrConflict)

	repo.products[cat.ID] = 0
	require.NoError(t, svc.Delete(ctx, cat.ID))

	_, err = svc.Get(ctx, cat.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

package orders

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/products"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/inventory"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// memoryStore backs the service ports with an in-memory transactional model.
// WithTx serializes on the store mutex and stages writes, mirroring how the
// row-locked SQL transactions behave.
type memoryStore struct {
	mu        sync.Mutex
	stock     map[int64]int
	purchases map[int64]*Purchase
	nextID    int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{stock: map[int64]int{}, purchases: map[int64]*Purchase{}, nextID: 1}
}

type memoryTx struct {
	store           *memoryStore
	stagedStock     map[int64]int
	stagedPurchases map[int64]*Purchase
	nextID          int64
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryTx{
		store:           m,
		stagedStock:     map[int64]int{},
		stagedPurchases: map[int64]*Purchase{},
		nextID:          m.nextID,
	}
	for id, qty := range m.stock {
		tx.stagedStock[id] = qty
	}
	for id, p := range m.purchases {
		copied := *p
		copied.Items = append([]PurchaseItem(nil), p.Items...)
		tx.stagedPurchases[id] = &copied
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.stock = tx.stagedStock
	m.purchases = tx.stagedPurchases
	m.nextID = tx.nextID
	return nil
}

func (t *memoryTx) Reserve(_ context.Context, productID int64, quantity int) error {
	available, ok := t.stagedStock[productID]
	if !ok {
		return shared.ErrNotFound
	}
	if available < quantity {
		return fmt.Errorf("%w: product %d has %d in stock, requested %d", shared.ErrInsufficientStock, productID, available, quantity)
	}
	t.stagedStock[productID] = available - quantity
	return nil
}

func (t *memoryTx) Release(_ context.Context, productID int64, quantity int) error {
	if _, ok := t.stagedStock[productID]; !ok {
		return shared.ErrNotFound
	}
	t.stagedStock[productID] += quantity
	return nil
}

func (t *memoryTx) Restock(_ context.Context, productID int64, quantity int) (inventory.Record, error) {
	if _, ok := t.stagedStock[productID]; !ok {
		return inventory.Record{}, shared.ErrNotFound
	}
	t.stagedStock[productID] += quantity
	return inventory.Record{QuantityInStock: t.stagedStock[productID]}, nil
}

func (t *memoryTx) Insert(_ context.Context, purchase Purchase) (int64, error) {
	purchase.ID = t.nextID
	t.nextID++
	t.stagedPurchases[purchase.ID] = &purchase
	return purchase.ID, nil
}

func (t *memoryTx) InsertItem(_ context.Context, item PurchaseItem) (int64, error) {
	p, ok := t.stagedPurchases[item.PurchaseID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	item.ID = t.nextID
	t.nextID++
	p.Items = append(p.Items, item)
	return item.ID, nil
}

func (t *memoryTx) GetForUpdate(_ context.Context, id int64) (Purchase, error) {
	p, ok := t.stagedPurchases[id]
	if !ok {
		return Purchase{}, shared.ErrNotFound
	}
	return *p, nil
}

func (t *memoryTx) Items(_ context.Context, purchaseID int64) ([]PurchaseItem, error) {
	p, ok := t.stagedPurchases[purchaseID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p.Items, nil
}

func (t *memoryTx) UpdateStatus(_ context.Context, id int64, status Status) error {
	p, ok := t.stagedPurchases[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = status
	return nil
}

func (t *memoryTx) UpdateDetails(_ context.Context, id int64, input UpdateInput) error {
	p, ok := t.stagedPurchases[id]
	if !ok {
		return shared.ErrNotFound
	}
	if input.PaymentMethod != nil {
		p.PaymentMethod = input.PaymentMethod
	}
	if input.PaymentStatus != nil {
		p.PaymentStatus = *input.PaymentStatus
	}
	if input.ShippingAddress != nil {
		p.ShippingAddress = input.ShippingAddress
	}
	if input.Notes != nil {
		p.Notes = input.Notes
	}
	return nil
}

func (m *memoryStore) Get(_ context.Context, id int64) (Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.purchases[id]
	if !ok {
		return Purchase{}, shared.ErrNotFound
	}
	copied := *p
	copied.Items = append([]PurchaseItem(nil), p.Items...)
	return copied, nil
}

func (m *memoryStore) List(_ context.Context, filter ListFilter) ([]Purchase, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []Purchase
	for _, p := range m.purchases {
		if filter.UserID > 0 && p.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		result = append(result, *p)
	}
	return result, len(result), nil
}

func (m *memoryStore) stockOf(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[productID]
}

type memoryCatalog struct {
	mu       sync.Mutex
	products map[int64]products.Product
}

func (c *memoryCatalog) Get(_ context.Context, id int64) (products.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok || !p.IsActive {
		return products.Product{}, shared.ErrNotFound
	}
	return p, nil
}

type memoryKeys struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (k *memoryKeys) CheckAndInsert(_ context.Context, key, _ string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.keys == nil {
		k.keys = map[string]bool{}
	}
	if k.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	k.keys[key] = true
	return nil
}

func (k *memoryKeys) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.keys, key)
	return nil
}

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	store   *memoryStore
	catalog *memoryCatalog
	keys    *memoryKeys
	svc     *Service
}

func newFixture() *fixture {
	store := newMemoryStore()
	catalog := &memoryCatalog{products: map[int64]products.Product{}}
	keys := &memoryKeys{}
	svc := NewService(store, catalog, keys, nil, slog.Default())
	return &fixture{store: store, catalog: catalog, keys: keys, svc: svc}
}

func (f *fixture) seedProduct(id int64, sellingPrice string, stock int) {
	f.catalog.products[id] = products.Product{ID: id, Name: fmt.Sprintf("product-%d", id), SellingPrice: price(sellingPrice), IsActive: true}
	f.store.stock[id] = stock
}

var customer = shared.Principal{UserID: 10, Role: shared.RoleCustomer}
var staff = shared.Principal{UserID: 20, Role: shared.RoleStaff}

func TestCreateFreezesPricesAndComputesTotal(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "49.99", 10)
	f.seedProduct(2, "15.00", 10)

	purchase, err := f.svc.Create(context.Background(), CreateInput{
		UserID: customer.UserID,
		Items: []CreateItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 3},
		},
	}, "")
	require.NoError(t, err)
	require.Equal(t, StatusPending, purchase.Status)
	require.True(t, purchase.TotalAmount.Equal(price("144.98")), "total %s", purchase.TotalAmount)
	require.Equal(t, 8, f.store.stockOf(1))
	require.Equal(t, 7, f.store.stockOf(2))

	// A later catalog price change never alters the stored order.
	p := f.catalog.products[1]
	p.SellingPrice = price("99.99")
	f.catalog.products[1] = p

	reloaded, err := f.svc.Get(context.Background(), purchase.ID, customer)
	require.NoError(t, err)
	require.True(t, reloaded.Items[0].UnitPrice.Equal(price("49.99")))
	require.True(t, reloaded.TotalAmount.Equal(price("144.98")))

	var sum decimal.Decimal
	for _, item := range reloaded.Items {
		sum = sum.Add(item.Subtotal)
	}
	require.True(t, reloaded.TotalAmount.Equal(sum))
}

func TestCreateAllOrNothing(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "10.00", 10)
	f.seedProduct(2, "20.00", 1)

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID: customer.UserID,
		Items: []CreateItemInput{
			{ProductID: 1, Quantity: 4},
			{ProductID: 2, Quantity: 5},
		},
	}, "")
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	require.Equal(t, 10, f.store.stockOf(1), "failed order must not consume stock")
	require.Equal(t, 1, f.store.stockOf(2))
	_, total, err := f.svc.List(context.Background(), ListFilter{}, staff)
	require.NoError(t, err)
	require.Zero(t, total, "failed order must not persist rows")
}

func TestCreateValidation(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "10.00", 10)

	cases := []CreateInput{
		{UserID: customer.UserID},
		{UserID: customer.UserID, Items: []CreateItemInput{{ProductID: 1, Quantity: 0}}},
		{UserID: customer.UserID, Items: []CreateItemInput{{ProductID: 1, Quantity: -2}}},
		{UserID: customer.UserID, Items: []CreateItemInput{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 1}}},
	}
	for _, input := range cases {
		_, err := f.svc.Create(context.Background(), input, "")
		require.ErrorIs(t, err, shared.ErrInvalidInput)
	}

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 404, Quantity: 1}},
	}, "")
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCancelRestoresStock(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "10.00", 5)

	purchase, err := f.svc.Create(context.Background(), CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 5}},
	}, "")
	require.NoError(t, err)
	require.Equal(t, 0, f.store.stockOf(1))

	cancelled, err := f.svc.Cancel(context.Background(), purchase.ID, customer)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Equal(t, 5, f.store.stockOf(1))

	// A cancelled order is final.
	_, err = f.svc.Cancel(context.Background(), purchase.ID, customer)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
	require.Equal(t, 5, f.store.stockOf(1), "double cancel must not restore twice")
}

func TestCancelCompletedRejected(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "10.00", 5)

	purchase, err := f.svc.Create(context.Background(), CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 2}},
	}, "")
	require.NoError(t, err)

	completed := StatusCompleted
	_, err = f.svc.Update(context.Background(), purchase.ID, UpdateInput{Status: &completed}, staff)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), purchase.ID, staff)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
	require.Equal(t, 3, f.store.stockOf(1))
}

func TestCancelOwnershipScoped(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "10.00", 5)

	purchase, err := f.svc.Create(context.Background(), CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 1}},
	}, "")
	require.NoError(t, err)

	other := shared.Principal{UserID: 99, Role: shared.RoleCustomer}
	_, err = f.svc.Cancel(context.Background(), purchase.ID, other)
	require.ErrorIs(t, err, shared.ErrNotFound)

	// Staff may cancel on behalf of the customer.
	_, err = f.svc.Cancel(context.Background(), purchase.ID, staff)
	require.NoError(t, err)
	require.Equal(t, 5, f.store.stockOf(1))
}

func TestListAndGetScopedToOwner(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "10.00", 20)

	mine, err := f.svc.Create(context.Background(), CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 1}},
	}, "")
	require.NoError(t, err)

	other := shared.Principal{UserID: 99, Role: shared.RoleCustomer}
	_, err = f.svc.Create(context.Background(), CreateInput{
		UserID: other.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 1}},
	}, "")
	require.NoError(t, err)

	listed, total, err := f.svc.List(context.Background(), ListFilter{}, customer)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, customer.UserID, listed[0].UserID)

	_, allTotal, err := f.svc.List(context.Background(), ListFilter{}, staff)
	require.NoError(t, err)
	require.Equal(t, 2, allTotal)

	_, err = f.svc.Get(context.Background(), mine.ID, other)
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.svc.Get(context.Background(), mine.ID, staff)
	require.NoError(t, err)
}

func TestIdempotencyKeyDeduplicates(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "10.00", 10)

	input := CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 1}},
	}
	_, err := f.svc.Create(context.Background(), input, "key-1")
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), input, "key-1")
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Equal(t, 9, f.store.stockOf(1))

	// A failed order releases its key so the client may retry.
	_, err = f.svc.Create(context.Background(), CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 100}},
	}, "key-2")
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	_, err = f.svc.Create(context.Background(), input, "key-2")
	require.NoError(t, err)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "10.00", 5)

	var g errgroup.Group
	results := make([]error, 2)
	for i := range results {
		i := i
		g.Go(func() error {
			_, err := f.svc.Create(context.Background(), CreateInput{
				UserID: customer.UserID,
				Items:  []CreateItemInput{{ProductID: 1, Quantity: 3}},
			}, "")
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var succeeded, failed int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, shared.ErrInsufficientStock)
			failed++
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, failed)
	require.Equal(t, 2, f.store.stockOf(1))
}

func TestUpdateStatusRules(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "10.00", 10)

	purchase, err := f.svc.Create(context.Background(), CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 1}},
	}, "")
	require.NoError(t, err)

	bogus := Status("shipped")
	_, err = f.svc.Update(context.Background(), purchase.ID, UpdateInput{Status: &bogus}, staff)
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	// Cancelling through Update would skip the stock release.
	cancelled := StatusCancelled
	_, err = f.svc.Update(context.Background(), purchase.ID, UpdateInput{Status: &cancelled}, staff)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	completed := StatusCompleted
	updated, err := f.svc.Update(context.Background(), purchase.ID, UpdateInput{Status: &completed}, staff)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, updated.Status)

	pending := StatusPending
	_, err = f.svc.Update(context.Background(), purchase.ID, UpdateInput{Status: &pending}, staff)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestCreateWithInitialStatus(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "12.00", 10)
	ctx := context.Background()

	// A counter sale records as completed and paid in a single request, and
	// still reserves stock.
	completed := StatusCompleted
	paid := PaymentPaid
	purchase, err := f.svc.Create(ctx, CreateInput{
		UserID:        customer.UserID,
		Items:         []CreateItemInput{{ProductID: 1, Quantity: 2}},
		Status:        &completed,
		PaymentStatus: &paid,
	}, "")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, purchase.Status)
	require.Equal(t, PaymentPaid, purchase.PaymentStatus)
	require.Equal(t, 8, f.store.stock[1])

	// Completed is final, so the sale cannot be cancelled afterwards.
	_, err = f.svc.Cancel(ctx, purchase.ID, staff)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	cancelled := StatusCancelled
	_, err = f.svc.Create(ctx, CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 1}},
		Status: &cancelled,
	}, "")
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	bogus := Status("shipped")
	_, err = f.svc.Create(ctx, CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 1}},
		Status: &bogus,
	}, "")
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	badPayment := PaymentStatus("voided")
	_, err = f.svc.Create(ctx, CreateInput{
		UserID:        customer.UserID,
		Items:         []CreateItemInput{{ProductID: 1, Quantity: 1}},
		PaymentStatus: &badPayment,
	}, "")
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestUpdatePaymentFields(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "10.00", 10)

	purchase, err := f.svc.Create(context.Background(), CreateInput{
		UserID: customer.UserID,
		Items:  []CreateItemInput{{ProductID: 1, Quantity: 1}},
	}, "")
	require.NoError(t, err)
	require.Equal(t, PaymentPending, purchase.PaymentStatus)

	bogus := PaymentStatus("voided")
	_, err = f.svc.Update(context.Background(), purchase.ID, UpdateInput{PaymentStatus: &bogus}, staff)
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	method := "card"
	paid := PaymentPaid
	updated, err := f.svc.Update(context.Background(), purchase.ID, UpdateInput{PaymentMethod: &method, PaymentStatus: &paid}, staff)
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, updated.PaymentStatus)
	require.NotNil(t, updated.PaymentMethod)
	require.Equal(t, "card", *updated.PaymentMethod)
}

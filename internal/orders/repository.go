package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/inventory"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/platform/db"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// TxRepository groups the writes that must commit atomically with stock
// movements. It embeds the inventory ledger bound to the same transaction so
// a purchase and its reservations share one commit.
type TxRepository interface {
	inventory.TxLedger
	Insert(ctx context.Context, purchase Purchase) (int64, error)
	InsertItem(ctx context.Context, item PurchaseItem) (int64, error)
	GetForUpdate(ctx context.Context, id int64) (Purchase, error)
	Items(ctx context.Context, purchaseID int64) ([]PurchaseItem, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdateDetails(ctx context.Context, id int64, input UpdateInput) error
}

// Repository persists purchases in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	inventory.TxLedger
	tx pgx.Tx
}

// WithTx runs fn inside one repeatable-read transaction covering both the
// purchase tables and the inventory ledger.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{TxLedger: inventory.NewTxLedger(tx), tx: tx})
	})
}

func (t *txRepository) Insert(ctx context.Context, purchase Purchase) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO purchases (user_id, status, total_amount, payment_method, payment_status, shipping_address, notes, purchase_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW(), NOW())
RETURNING id`, purchase.UserID, purchase.Status, purchase.TotalAmount, purchase.PaymentMethod, purchase.PaymentStatus, purchase.ShippingAddress, purchase.Notes).Scan(&id)
	return id, err
}

func (t *txRepository) InsertItem(ctx context.Context, item PurchaseItem) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO purchase_items (purchase_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`, item.PurchaseID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal).Scan(&id)
	return id, err
}

// GetForUpdate locks the purchase row so concurrent cancellations of the same
// order serialize. Only one wins; the loser sees the final status.
func (t *txRepository) GetForUpdate(ctx context.Context, id int64) (Purchase, error) {
	return scanPurchase(t.tx.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id=$1 FOR UPDATE`, id))
}

func (t *txRepository) Items(ctx context.Context, purchaseID int64) ([]PurchaseItem, error) {
	return queryItems(ctx, t.tx, purchaseID)
}

func (t *txRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := t.tx.Exec(ctx, `UPDATE purchases SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepository) UpdateDetails(ctx context.Context, id int64, input UpdateInput) error {
	query := `UPDATE purchases SET updated_at=NOW()`
	args := []any{id}
	argPos := 2
	set := func(column string, value any) {
		query += fmt.Sprintf(", %s=$%d", column, argPos)
		args = append(args, value)
		argPos++
	}
	if input.PaymentMethod != nil {
		set("payment_method", *input.PaymentMethod)
	}
	if input.PaymentStatus != nil {
		set("payment_status", *input.PaymentStatus)
	}
	if input.ShippingAddress != nil {
		set("shipping_address", *input.ShippingAddress)
	}
	if input.Notes != nil {
		set("notes", *input.Notes)
	}
	query += ` WHERE id=$1`
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const purchaseColumns = `id, user_id, status, total_amount, payment_method, payment_status, shipping_address, notes, purchase_date, created_at, updated_at`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.UserID, &p.Status, &p.TotalAmount, &p.PaymentMethod, &p.PaymentStatus, &p.ShippingAddress, &p.Notes, &p.PurchaseDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, shared.ErrNotFound
	}
	if err != nil {
		return Purchase{}, err
	}
	return p, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryItems(ctx context.Context, q queryer, purchaseID int64) ([]PurchaseItem, error) {
	rows, err := q.Query(ctx, `SELECT pi.id, pi.purchase_id, pi.product_id, p.name, p.sku, pi.quantity, pi.unit_price, pi.subtotal
FROM purchase_items pi
JOIN products p ON p.id = pi.product_id
WHERE pi.purchase_id=$1
ORDER BY pi.id`, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PurchaseItem
	for rows.Next() {
		var item PurchaseItem
		if err := rows.Scan(&item.ID, &item.PurchaseID, &item.ProductID, &item.ProductName, &item.SKU, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Get loads a purchase with its items.
func (r *Repository) Get(ctx context.Context, id int64) (Purchase, error) {
	purchase, err := scanPurchase(r.pool.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id=$1`, id))
	if err != nil {
		return Purchase{}, err
	}
	purchase.Items, err = queryItems(ctx, r.pool, id)
	if err != nil {
		return Purchase{}, err
	}
	return purchase, nil
}

// List returns purchases matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if filter.UserID > 0 {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, filter.UserID)
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}
	where := ""
	for i, cond := range conditions {
		if i == 0 {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT %s FROM purchases%s ORDER BY purchase_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		purchaseColumns, where, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.Status, &p.TotalAmount, &p.PaymentMethod, &p.PaymentStatus, &p.ShippingAddress, &p.Notes, &p.PurchaseDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range purchases {
		items, err := queryItems(ctx, r.pool, purchases[i].ID)
		if err != nil {
			return nil, 0, err
		}
		purchases[i].Items = items
	}
	return purchases, total, nil
}

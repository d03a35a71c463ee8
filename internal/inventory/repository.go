package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/platform/db"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxLedger exposes the reservation operations bound to one transaction. The
// order workflow obtains a TxLedger for its own pgx.Tx so stock movements and
// purchase rows commit or roll back together.
type TxLedger interface {
	Reserve(ctx context.Context, productID int64, quantity int) error
	Release(ctx context.Context, productID int64, quantity int) error
	Restock(ctx context.Context, productID int64, quantity int) (Record, error)
}

type txLedger struct {
	tx pgx.Tx
}

// NewTxLedger binds ledger operations to an existing transaction.
func NewTxLedger(tx pgx.Tx) TxLedger {
	return &txLedger{tx: tx}
}

// WithTx executes the callback inside a repeatable-read transaction scoped to
// the inventory ledger.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxLedger) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txLedger{tx: tx})
	})
}

// Reserve decrements available stock after a row-locked availability check.
// Two concurrent reservations against the same product serialize on the row
// lock, so the compare-and-decrement cannot oversell.
func (l *txLedger) Reserve(ctx context.Context, productID int64, quantity int) error {
	var available int
	err := l.tx.QueryRow(ctx, `SELECT quantity_in_stock FROM inventory WHERE product_id=$1 FOR UPDATE`, productID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: no inventory record for product %d", shared.ErrNotFound, productID)
		}
		return err
	}
	if available < quantity {
		return fmt.Errorf("%w: product %d has %d in stock, requested %d", shared.ErrInsufficientStock, productID, available, quantity)
	}
	_, err = l.tx.Exec(ctx, `UPDATE inventory SET quantity_in_stock = quantity_in_stock - $2, updated_at = NOW() WHERE product_id=$1`, productID, quantity)
	return err
}

// Release adds reserved quantity back; the exact inverse of Reserve.
func (l *txLedger) Release(ctx context.Context, productID int64, quantity int) error {
	tag, err := l.tx.Exec(ctx, `UPDATE inventory SET quantity_in_stock = quantity_in_stock + $2, updated_at = NOW() WHERE product_id=$1`, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no inventory record for product %d", shared.ErrNotFound, productID)
	}
	return nil
}

// Restock increases stock and stamps last_restocked.
func (l *txLedger) Restock(ctx context.Context, productID int64, quantity int) (Record, error) {
	row := l.tx.QueryRow(ctx, `UPDATE inventory
SET quantity_in_stock = quantity_in_stock + $2, last_restocked = NOW(), updated_at = NOW()
WHERE product_id=$1
RETURNING `+recordColumns, productID, quantity)
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

const recordColumns = `id, product_id, quantity_in_stock, minimum_stock_level, maximum_stock_level, last_restocked, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.ProductID, &rec.QuantityInStock, &rec.MinimumStockLevel, &rec.MaximumStockLevel, &rec.LastRestocked, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, shared.ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	rec.DeriveFlags()
	return rec, nil
}

// GetByProduct loads the record for one product.
func (r *Repository) GetByProduct(ctx context.Context, productID int64) (Record, error) {
	return scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM inventory WHERE product_id=$1`, productID))
}

// List returns inventory records for active products.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	where := `JOIN products p ON p.id = i.product_id WHERE p.is_active`
	if filter.OutOfStockOnly {
		where += ` AND i.quantity_in_stock = 0`
	} else if filter.LowStockOnly {
		where += ` AND i.quantity_in_stock <= i.minimum_stock_level`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory i `+where).Scan(&total); err != nil {
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
	rows, err := r.pool.Query(ctx, `SELECT i.id, i.product_id, i.quantity_in_stock, i.minimum_stock_level, i.maximum_stock_level, i.last_restocked, i.created_at, i.updated_at
FROM inventory i `+where+` ORDER BY i.product_id LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.QuantityInStock, &rec.MinimumStockLevel, &rec.MaximumStockLevel, &rec.LastRestocked, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		rec.DeriveFlags()
		result = append(result, rec)
	}
	return result, total, rows.Err()
}

// Create inserts a record for a product that does not have one yet.
func (r *Repository) Create(ctx context.Context, input CreateInput) (Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, `INSERT INTO inventory (product_id, quantity_in_stock, minimum_stock_level, maximum_stock_level, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING `+recordColumns, input.ProductID, input.QuantityInStock, input.MinimumStockLevel, input.MaximumStockLevel))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Record{}, fmt.Errorf("%w: inventory record already exists for product", shared.ErrConflict)
			case "23503":
				return Record{}, fmt.Errorf("%w: product not found", shared.ErrInvalidInput)
			}
		}
		return Record{}, err
	}
	return rec, nil
}

// UpdateLevels overwrites stock levels directly (staff correction path).
func (r *Repository) UpdateLevels(ctx context.Context, productID int64, qty, min, max int) (Record, error) {
	return scanRecord(r.pool.QueryRow(ctx, `UPDATE inventory
SET quantity_in_stock=$2, minimum_stock_level=$3, maximum_stock_level=$4, updated_at=NOW()
WHERE product_id=$1
RETURNING `+recordColumns, productID, qty, min, max))
}

// Alerts returns low-stock and out-of-stock items for active products. Pure
// read, no side effects.
func (r *Repository) Alerts(ctx context.Context) (Alerts, error) {
	rows, err := r.pool.Query(ctx, `SELECT i.id, i.product_id, i.quantity_in_stock, i.minimum_stock_level, i.maximum_stock_level, i.last_restocked, i.created_at, i.updated_at, p.name, p.sku
FROM inventory i
JOIN products p ON p.id = i.product_id
WHERE p.is_active AND i.quantity_in_stock <= i.minimum_stock_level
ORDER BY i.quantity_in_stock ASC, p.name`)
	if err != nil {
		return Alerts{}, err
	}
	defer rows.Close()

	alerts := Alerts{LowStock: []AlertItem{}, OutOfStock: []AlertItem{}}
	for rows.Next() {
		var item AlertItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.QuantityInStock, &item.MinimumStockLevel, &item.MaximumStockLevel, &item.LastRestocked, &item.CreatedAt, &item.UpdatedAt, &item.ProductName, &item.SKU); err != nil {
			return Alerts{}, err
		}
		item.DeriveFlags()
		if item.IsOutOfStock {
			alerts.OutOfStock = append(alerts.OutOfStock, item)
		} else {
			alerts.LowStock = append(alerts.LowStock, item)
		}
	}
	if err := rows.Err(); err != nil {
		return Alerts{}, err
	}
	alerts.TotalAlerts = len(alerts.LowStock) + len(alerts.OutOfStock)
	return alerts, nil
}

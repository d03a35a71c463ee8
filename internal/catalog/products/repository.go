package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// Repository abstracts product persistence.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetBySKU(ctx context.Context, sku string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	CountPurchaseItems(ctx context.Context, id int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, name, description, sku, brand, size, color, cost_price, selling_price, image_url, category_id, supplier_id, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.Brand, &p.Size, &p.Color, &p.CostPrice, &p.SellingPrice, &p.ImageURL, &p.CategoryID, &p.SupplierID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	conditions := []string{"p.is_active"}
	args := []any{}
	argPos := 1

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d OR p.brand ILIKE $%d OR p.sku ILIKE $%d)", argPos, argPos, argPos, argPos))
		args = append(args, pattern)
		argPos++
	}
	if filter.CategoryID > 0 {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argPos))
		args = append(args, filter.CategoryID)
		argPos++
	}
	if filter.SupplierID > 0 {
		conditions = append(conditions, fmt.Sprintf("p.supplier_id = $%d", argPos))
		args = append(args, filter.SupplierID)
		argPos++
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.selling_price >= $%d", argPos))
		args = append(args, *filter.MinPrice)
		argPos++
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.selling_price <= $%d", argPos))
		args = append(args, *filter.MaxPrice)
		argPos++
	}
	if filter.Size != "" {
		conditions = append(conditions, fmt.Sprintf("p.size = $%d", argPos))
		args = append(args, filter.Size)
		argPos++
	}
	if filter.Color != "" {
		conditions = append(conditions, fmt.Sprintf("p.color ILIKE $%d", argPos))
		args = append(args, "%"+filter.Color+"%")
		argPos++
	}
	if filter.Brand != "" {
		conditions = append(conditions, fmt.Sprintf("p.brand ILIKE $%d", argPos))
		args = append(args, "%"+filter.Brand+"%")
		argPos++
	}
	if filter.InStockOnly {
		conditions = append(conditions, "EXISTS (SELECT 1 FROM inventory i WHERE i.product_id = p.id AND i.quantity_in_stock > 0)")
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p `+where, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT p.id, p.name, p.description, p.sku, p.brand, p.size, p.color, p.cost_price, p.selling_price, p.image_url, p.category_id, p.supplier_id, p.is_active, p.created_at, p.updated_at
FROM products p %s ORDER BY p.name LIMIT $%d OFFSET $%d`, where, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.Brand, &p.Size, &p.Color, &p.CostPrice, &p.SellingPrice, &p.ImageURL, &p.CategoryID, &p.SupplierID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *repository) GetBySKU(ctx context.Context, sku string) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku=$1`, sku))
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	created, err := scanProduct(r.pool.QueryRow(ctx, `INSERT INTO products (name, description, sku, brand, size, color, cost_price, selling_price, image_url, category_id, supplier_id, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, NOW(), NOW())
RETURNING `+productColumns,
		product.Name, product.Description, product.SKU, product.Brand, product.Size, product.Color,
		product.CostPrice, product.SellingPrice, product.ImageURL, product.CategoryID, product.SupplierID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, fmt.Errorf("%w: sku already exists", shared.ErrConflict)
		}
		return Product{}, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, product Product) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name=$2, description=$3, brand=$4, size=$5, color=$6, cost_price=$7, selling_price=$8, image_url=$9, category_id=$10, supplier_id=$11, is_active=$12, updated_at=NOW() WHERE id=$1`,
		product.ID, product.Name, product.Description, product.Brand, product.Size, product.Color,
		product.CostPrice, product.SellingPrice, product.ImageURL, product.CategoryID, product.SupplierID, product.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountPurchaseItems(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_items WHERE product_id=$1`, id).Scan(&count)
	return count, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return shared.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

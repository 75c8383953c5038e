package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, name, description, category, price, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, category, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Description, string(product.Category),
		product.Price, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", classify(err))
	}
	return nil
}

// GetByID obtiene un producto por ID; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", classify(err))
	}
	return p, nil
}

// GetBySKU obtiene un producto por SKU; nil si no existe.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, sku))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", classify(err))
	}
	return p, nil
}

// Update actualiza los datos de catálogo. El stock no vive aquí: se maneja en el ledger.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, name = $3, description = $4, category = $5, price = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Description, string(product.Category),
		product.Price, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", classify(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos con su stock total, aplicando filtros y paginación.
// Devuelve también el total de productos que cumplen los filtros (sin paginar).
func (r *ProductRepo) List(ctx context.Context, filter entity.ProductFilter) ([]*entity.ProductWithStock, int, error) {
	query := `
		SELECT p.id, p.sku, p.name, p.description, p.category, p.price, p.created_at, p.updated_at,
		       COALESCE(s.total, 0) AS total_stock,
		       COUNT(*) OVER () AS total_count
		FROM products p
		LEFT JOIN (
			SELECT product_id, SUM(quantity)::bigint AS total
			FROM ledger_entries GROUP BY product_id
		) s ON s.product_id = p.id
		WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.Category != nil {
		query += fmt.Sprintf(" AND p.category = $%d", pos)
		args = append(args, string(*filter.Category))
		pos++
	}
	if filter.MinPrice != nil {
		query += fmt.Sprintf(" AND p.price >= $%d", pos)
		args = append(args, *filter.MinPrice)
		pos++
	}
	if filter.MaxPrice != nil {
		query += fmt.Sprintf(" AND p.price <= $%d", pos)
		args = append(args, *filter.MaxPrice)
		pos++
	}
	if filter.InStock != nil {
		if *filter.InStock {
			query += " AND COALESCE(s.total, 0) > 0"
		} else {
			query += " AND COALESCE(s.total, 0) = 0"
		}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY p.name, p.id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", classify(err))
	}
	defer rows.Close()
	list := make([]*entity.ProductWithStock, 0)
	total := 0
	for rows.Next() {
		var (
			p        entity.ProductWithStock
			category string
			count    int64
		)
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &category, &p.Price,
			&p.CreatedAt, &p.UpdatedAt, &p.TotalStock, &count); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		p.Category = entity.Category(category)
		total = int(count)
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", classify(err))
	}
	return list, total, nil
}

// Delete elimina un producto por ID. Si el ledger o el log de movimientos lo referencian
// devuelve domain.ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete product: %w", classify(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p        entity.Product
		category string
	)
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &category, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Category = entity.Category(category)
	return &p, nil
}

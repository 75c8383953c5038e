package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `product_id, location_id, quantity, min_threshold, updated_at`

// LedgerRepo implementación de LedgerRepository sobre PostgreSQL (usable con pool o tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Get obtiene la entrada de un producto en una ubicación sin bloquearla.
func (r *LedgerRepo) Get(ctx context.Context, productID, locationID string) (*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries WHERE product_id = $1 AND location_id = $2`
	e, err := scanLedgerEntry(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", classify(err))
	}
	return e, nil
}

// GetForUpdate obtiene la entrada y bloquea la fila para update (SELECT FOR UPDATE).
// La espera está acotada por lock_timeout; al agotarse devuelve domain.ErrLockTimeout.
func (r *LedgerRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	e, err := scanLedgerEntry(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock ledger entry: %w", classifyLockWait(err))
	}
	return e, nil
}

// Decrement resta quantity y devuelve el saldo resultante.
// El CHECK (quantity >= 0) de la tabla rechaza cualquier saldo negativo.
func (r *LedgerRepo) Decrement(ctx context.Context, productID, locationID string, quantity int64) (int64, error) {
	query := `
		UPDATE ledger_entries SET quantity = quantity - $3, updated_at = now()
		WHERE product_id = $1 AND location_id = $2
		RETURNING quantity`
	var balance int64
	if err := r.q.QueryRow(ctx, query, productID, locationID, quantity).Scan(&balance); err != nil {
		if noRows(err) {
			return 0, domain.ErrSourceNotFound
		}
		return 0, fmt.Errorf("decrement ledger entry: %w", classifyLockWait(err))
	}
	return balance, nil
}

// UpsertIncrement suma quantity a la entrada o la crea con defaultThreshold.
// Dos transacciones que crean la misma pareja terminan en una sola fila: la segunda espera el
// bloqueo del índice único y actualiza. xmax = 0 solo en filas recién insertadas.
func (r *LedgerRepo) UpsertIncrement(ctx context.Context, productID, locationID string, quantity, defaultThreshold int64) (int64, bool, error) {
	query := `
		INSERT INTO ledger_entries (product_id, location_id, quantity, min_threshold, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = ledger_entries.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity, (xmax = 0) AS created`
	var (
		balance int64
		created bool
	)
	if err := r.q.QueryRow(ctx, query, productID, locationID, quantity, defaultThreshold).Scan(&balance, &created); err != nil {
		return 0, false, fmt.Errorf("upsert ledger entry: %w", classifyLockWait(err))
	}
	return balance, created, nil
}

// Create coloca stock inicial de un producto en una ubicación.
func (r *LedgerRepo) Create(ctx context.Context, entry *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (product_id, location_id, quantity, min_threshold, updated_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, entry.ProductID, entry.LocationID, entry.Quantity, entry.MinThreshold).Scan(&entry.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ledger entry: %w", classify(err))
	}
	return nil
}

// UpdateThreshold cambia el umbral mínimo sin tocar la cantidad.
func (r *LedgerRepo) UpdateThreshold(ctx context.Context, productID, locationID string, threshold int64) (*entity.LedgerEntry, error) {
	query := `
		UPDATE ledger_entries SET min_threshold = $3, updated_at = now()
		WHERE product_id = $1 AND location_id = $2
		RETURNING ` + ledgerColumns
	e, err := scanLedgerEntry(r.q.QueryRow(ctx, query, productID, locationID, threshold))
	if err != nil {
		if noRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update threshold: %w", classifyLockWait(err))
	}
	return e, nil
}

// ListBelowThreshold entradas con quantity < min_threshold enriquecidas con producto y ubicación,
// ordenadas por nombre de producto y luego de ubicación.
func (r *LedgerRepo) ListBelowThreshold(ctx context.Context, locationID string) ([]entity.LowStockEntry, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT le.product_id, le.location_id, le.quantity, le.min_threshold, le.updated_at,
		       p.name, p.sku, p.category, l.name, l.address
		FROM ledger_entries le
		JOIN products p ON p.id = le.product_id
		JOIN locations l ON l.id = le.location_id
		WHERE le.quantity < le.min_threshold`)
	args := []any{}
	if locationID != "" {
		args = append(args, locationID)
		sb.WriteString(" AND le.location_id = $1")
	}
	sb.WriteString(" ORDER BY p.name, l.name, le.product_id, le.location_id")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list below threshold: %w", classify(err))
	}
	defer rows.Close()

	list := make([]entity.LowStockEntry, 0)
	for rows.Next() {
		var (
			e        entity.LowStockEntry
			category string
		)
		if err := rows.Scan(
			&e.ProductID, &e.LocationID, &e.Quantity, &e.MinThreshold, &e.UpdatedAt,
			&e.ProductName, &e.ProductSKU, &category, &e.LocationName, &e.LocationAddress,
		); err != nil {
			return nil, fmt.Errorf("scan low stock entry: %w", err)
		}
		e.ProductCategory = entity.Category(category)
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list below threshold: %w", classify(err))
	}
	return list, nil
}

// ListByLocation entradas de una ubicación ordenadas por producto.
func (r *LedgerRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries WHERE location_id = $1 ORDER BY product_id`
	return r.list(ctx, query, locationID)
}

// ListByProduct entradas de un producto en todas sus ubicaciones.
func (r *LedgerRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries WHERE product_id = $1 ORDER BY location_id`
	return r.list(ctx, query, productID)
}

// SumByProduct stock total del producto.
func (r *LedgerRepo) SumByProduct(ctx context.Context, productID string) (int64, error) {
	query := `SELECT COALESCE(SUM(quantity), 0)::bigint FROM ledger_entries WHERE product_id = $1`
	var total int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum ledger entries: %w", classify(err))
	}
	return total, nil
}

func (r *LedgerRepo) list(ctx context.Context, query string, arg string) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", classify(err))
	}
	defer rows.Close()
	list := make([]*entity.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", classify(err))
	}
	return list, nil
}

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	if err := row.Scan(&e.ProductID, &e.LocationID, &e.Quantity, &e.MinThreshold, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

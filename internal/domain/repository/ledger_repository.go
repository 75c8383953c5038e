package repository

import (
	"context"

	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
)

// LedgerRepository define el puerto del ledger de saldos por (producto, ubicación).
// Las operaciones de escritura se usan dentro de una transacción (ver inventory.TxRunner).
type LedgerRepository interface {
	// Get lectura puntual sin bloqueo; nil si no existe.
	Get(ctx context.Context, productID, locationID string) (*entity.LedgerEntry, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el commit o rollback; nil si no existe.
	GetForUpdate(ctx context.Context, productID, locationID string) (*entity.LedgerEntry, error)
	// Decrement resta quantity de una fila ya bloqueada y devuelve el nuevo saldo.
	Decrement(ctx context.Context, productID, locationID string, quantity int64) (int64, error)
	// UpsertIncrement suma quantity creando la fila si no existe (la unicidad la garantiza el store).
	// Devuelve el nuevo saldo y si la fila fue creada.
	UpsertIncrement(ctx context.Context, productID, locationID string, quantity, defaultThreshold int64) (int64, bool, error)
	// Create coloca stock inicial; domain.ErrDuplicate si la pareja ya existe.
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	// UpdateThreshold cambia solo el umbral mínimo; domain.ErrNotFound si no existe.
	UpdateThreshold(ctx context.Context, productID, locationID string, threshold int64) (*entity.LedgerEntry, error)
	// ListBelowThreshold entradas con quantity < min_threshold; locationID vacío = todas.
	ListBelowThreshold(ctx context.Context, locationID string) ([]entity.LowStockEntry, error)
	ListByLocation(ctx context.Context, locationID string) ([]*entity.LedgerEntry, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.LedgerEntry, error)
	// SumByProduct stock total del producto en todas las ubicaciones (0 si no tiene entradas).
	SumByProduct(ctx context.Context, productID string) (int64, error)
}

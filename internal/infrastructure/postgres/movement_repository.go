package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, transfer_id, product_id, source_location_id, destination_location_id, quantity, kind, created_at`

// MovementRepo log de movimientos sobre PostgreSQL (usable con pool o tx). Solo inserta y lee.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append persiste un movimiento. created_at lo asigna la base de datos.
func (r *MovementRepo) Append(ctx context.Context, movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.Kind == "" {
		movement.Kind = entity.MovementKindTransfer
	}
	query := `
		INSERT INTO movements (id, transfer_id, product_id, source_location_id, destination_location_id, quantity, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING created_at`
	err := r.q.QueryRow(ctx, query,
		movement.ID, movement.TransferID, movement.ProductID, movement.SourceLocationID,
		movement.DestinationLocationID, movement.Quantity, movement.Kind,
	).Scan(&movement.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// transfer_id repetido dentro de un traslado: carrera de ids, reintentable.
			return fmt.Errorf("append movement: %w: %w", domain.ErrCommitConflict, err)
		}
		return fmt.Errorf("append movement: %w", classify(err))
	}
	return nil
}

// GetByTransferID obtiene el movimiento de un traslado; nil si no existe.
func (r *MovementRepo) GetByTransferID(ctx context.Context, transferID string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE transfer_id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, transferID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", classify(err))
	}
	return m, nil
}

// List movimientos más recientes primero, filtrando por producto y/o ubicación (origen o destino).
func (r *MovementRepo) List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.LocationID != "" {
		query += fmt.Sprintf(" AND (source_location_id = $%d OR destination_location_id = $%d)", pos, pos)
		args = append(args, filter.LocationID)
		pos++
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", classify(err))
	}
	defer rows.Close()
	list := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movements: %w", classify(err))
	}
	return list, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	if err := row.Scan(
		&m.ID, &m.TransferID, &m.ProductID, &m.SourceLocationID,
		&m.DestinationLocationID, &m.Quantity, &m.Kind, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

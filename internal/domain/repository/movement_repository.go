package repository

import (
	"context"

	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
)

// MovementRepository define el puerto del log de movimientos (solo inserción).
type MovementRepository interface {
	Append(ctx context.Context, movement *entity.Movement) error
	GetByTransferID(ctx context.Context, transferID string) (*entity.Movement, error)
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error)
}

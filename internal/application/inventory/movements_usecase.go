package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// MovementsUseCase consultas sobre el log de movimientos.
type MovementsUseCase struct {
	movementRepo repository.MovementRepository
}

func NewMovementsUseCase(movementRepo repository.MovementRepository) *MovementsUseCase {
	return &MovementsUseCase{movementRepo: movementRepo}
}

// List movimientos más recientes primero. Limit fuera de rango se ajusta a [1, 500].
func (uc *MovementsUseCase) List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error) {
	return uc.movementRepo.List(ctx, NormalizeMovementFilter(filter))
}

// NormalizeMovementFilter recorta los ids y aplica los límites de paginación del listado.
func NormalizeMovementFilter(filter entity.MovementFilter) entity.MovementFilter {
	filter.ProductID = strings.TrimSpace(filter.ProductID)
	filter.LocationID = strings.TrimSpace(filter.LocationID)
	if filter.Limit <= 0 {
		filter.Limit = defaultMovementLimit
	}
	if filter.Limit > maxMovementLimit {
		filter.Limit = maxMovementLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter
}

// GetByTransferID obtiene el movimiento de un traslado.
func (uc *MovementsUseCase) GetByTransferID(ctx context.Context, transferID string) (*entity.Movement, error) {
	transferID = strings.TrimSpace(transferID)
	if transferID == "" {
		return nil, domain.ErrInvalidInput
	}
	m, err := uc.movementRepo.GetByTransferID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("traslado %s: %w", transferID, domain.ErrNotFound)
	}
	return m, nil
}

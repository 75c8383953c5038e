package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-transfer-api/internal/application/dto"
	"github.com/jhoicas/stock-transfer-api/internal/application/inventory"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
)

// MovementReader consultas del log de movimientos (inventory.MovementsUseCase).
type MovementReader interface {
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error)
	GetByTransferID(ctx context.Context, transferID string) (*entity.Movement, error)
}

// MovementHandler historial de traslados.
type MovementHandler struct {
	uc MovementReader
}

func NewMovementHandler(uc MovementReader) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Produce      json
// @Param        product_id   query  string  false  "Producto"
// @Param        location_id  query  string  false  "Origen o destino"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	filter := inventory.NormalizeMovementFilter(entity.MovementFilter{
		ProductID:  c.Query("product_id"),
		LocationID: c.Query("location_id"),
		Limit:      c.QueryInt("limit", 0),
		Offset:     c.QueryInt("offset", 0),
	})
	items, err := h.uc.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MovementListResponse{Items: make([]dto.MovementResponse, 0, len(items))}
	for _, m := range items {
		out.Items = append(out.Items, dto.FromMovement(m))
	}
	out.Page = dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset}
	return c.JSON(out)
}

// GetByTransferID godoc
// @Summary      Movimiento de un traslado
// @Tags         movements
// @Produce      json
// @Param        transfer_id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{transfer_id} [get]
func (h *MovementHandler) GetByTransferID(c *fiber.Ctx) error {
	m, err := h.uc.GetByTransferID(c.UserContext(), c.Params("transfer_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromMovement(m))
}

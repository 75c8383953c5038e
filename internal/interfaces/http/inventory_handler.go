package http

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-transfer-api/internal/application/dto"
	"github.com/jhoicas/stock-transfer-api/internal/application/inventory"
	"github.com/jhoicas/stock-transfer-api/internal/domain/transfer"
)

// Transferer motor de traslados (inventory.TransferUseCase).
type Transferer interface {
	Transfer(ctx context.Context, req transfer.Request) (*inventory.TransferResult, error)
}

// AlertLister escáner de alertas (inventory.AlertsUseCase).
type AlertLister interface {
	ListAlerts(ctx context.Context, locationID string) (*inventory.AlertReport, error)
}

// InventoryHandler traslados y alertas de stock bajo.
type InventoryHandler struct {
	transfers Transferer
	alerts    AlertLister
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(transfers Transferer, alerts AlertLister) *InventoryHandler {
	return &InventoryHandler{transfers: transfers, alerts: alerts}
}

// Transfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  Descuenta del origen y suma al destino en una sola transacción. 503 con Retry-After ante bloqueo o conflicto.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "product_id, source_location_id, destination_location_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil || raw == nil {
		return badBody(c)
	}
	req, err := transfer.Validate(raw)
	if err != nil {
		return writeError(c, err)
	}
	result, err := h.transfers.Transfer(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTransferResult(*result))
}

// ListAlerts godoc
// @Summary      Alertas de stock bajo
// @Description  Entradas con quantity < min_threshold, ordenadas por producto y ubicación.
// @Tags         inventory
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Success      200  {object}  dto.AlertReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/alerts [get]
func (h *InventoryHandler) ListAlerts(c *fiber.Ctx) error {
	report, err := h.alerts.ListAlerts(c.UserContext(), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromAlertReport(*report))
}

package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-transfer-api/internal/application/dto"
)

// LocationService ubicaciones y su inventario (usecase.LocationUseCase).
type LocationService interface {
	Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.LocationResponse, error)
	Update(ctx context.Context, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error)
	List(ctx context.Context, page dto.PageRequest) (*dto.LocationListResponse, error)
	Inventory(ctx context.Context, id string) (*dto.LocationInventoryResponse, error)
	UpdateThreshold(ctx context.Context, locationID, productID string, in dto.UpdateThresholdRequest) (*dto.LedgerEntryResponse, error)
}

// LocationHandler maneja las peticiones HTTP para Location.
type LocationHandler struct {
	uc LocationService
}

// NewLocationHandler construye el handler.
func NewLocationHandler(uc LocationService) *LocationHandler {
	return &LocationHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ubicación
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "name, address"
// @Success      201   {object}  dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener ubicación
// @Tags         locations
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ubicaciones
// @Tags         locations
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.LocationListResponse
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ubicación
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la ubicación"
// @Param        body  body  dto.UpdateLocationRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.LocationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [put]
func (h *LocationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Inventory godoc
// @Summary      Inventario de una ubicación
// @Tags         locations
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationInventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/inventory [get]
func (h *LocationHandler) Inventory(c *fiber.Ctx) error {
	out, err := h.uc.Inventory(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateThreshold godoc
// @Summary      Cambiar umbral mínimo
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id          path  string  true  "ID de la ubicación"
// @Param        product_id  path  string  true  "ID del producto"
// @Param        body        body  dto.UpdateThresholdRequest  true  "min_threshold"
// @Success      200  {object}  dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/inventory/{product_id}/threshold [put]
func (h *LocationHandler) UpdateThreshold(c *fiber.Ctx) error {
	var in dto.UpdateThresholdRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateThreshold(c.UserContext(), c.Params("id"), c.Params("product_id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

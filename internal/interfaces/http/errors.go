package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-transfer-api/internal/application/dto"
	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/transfer"
)

// statusClientClosedRequest el cliente abandonó la petición antes de la respuesta.
const statusClientClosedRequest = 499

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: el primer error que coincide con errors.Is gana.
var errorMappings = []errorMapping{
	{domain.ErrMissingField, fiber.StatusBadRequest, "MISSING_FIELD", "campo requerido ausente o con tipo incorrecto"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "la cantidad debe ser un entero positivo"},
	{domain.ErrSameLocation, fiber.StatusBadRequest, "SAME_LOCATION", "origen y destino deben ser distintos"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrSourceNotFound, fiber.StatusNotFound, "SOURCE_NOT_FOUND", "el producto no tiene inventario en la ubicación de origen"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "recurso duplicado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrLockTimeout, fiber.StatusServiceUnavailable, "LOCK_TIMEOUT", "inventario ocupado, reintente"},
	{domain.ErrCommitConflict, fiber.StatusServiceUnavailable, "COMMIT_CONFLICT", "conflicto de concurrencia, reintente"},
	{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", "almacenamiento no disponible"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	{context.Canceled, statusClientClosedRequest, "CLIENT_CLOSED_REQUEST", "petición cancelada por el cliente"},
}

// writeError traduce un error de dominio a su respuesta HTTP. Solo se usa en la frontera.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		body := dto.ErrorResponse{Code: m.code, Message: m.message}
		var fe *transfer.FieldError
		if errors.As(err, &fe) {
			body.Field = fe.Field
		}
		if m.target == domain.ErrInsufficientStock {
			body.Message = err.Error()
		}
		if domain.IsRetryable(err) {
			c.Set(fiber.HeaderRetryAfter, "1")
		}
		return c.Status(m.status).JSON(body)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Resultados tipados del motor de traslados.
// Validación: se rechazan antes de abrir cualquier transacción.
var (
	ErrMissingField    = errors.New("campo requerido ausente o con tipo incorrecto")
	ErrInvalidQuantity = errors.New("la cantidad debe ser un entero positivo")
	ErrSameLocation    = errors.New("la ubicación de origen y destino deben ser distintas")
)

// Reglas de negocio: sin reintento.
var (
	ErrSourceNotFound    = errors.New("el producto no tiene inventario en la ubicación de origen")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// Transitorios: el llamador puede reintentar con backoff, nunca queda estado parcial.
var (
	ErrLockTimeout    = errors.New("tiempo de espera del bloqueo agotado")
	ErrCommitConflict = errors.New("conflicto al confirmar la transacción")
)

// ErrStoreUnavailable es fatal para la petición en curso.
var ErrStoreUnavailable = errors.New("almacenamiento no disponible")

// IsRetryable indica si err es un fallo transitorio que se puede reintentar sin riesgo.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout) || errors.Is(err, ErrCommitConflict)
}

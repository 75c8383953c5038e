package entity

import "time"

// Tipos de movimiento. Hoy solo se registran traslados.
const (
	MovementKindTransfer = "TRANSFER"
)

// Movement registro de auditoría inmutable de un traslado confirmado.
// Se escribe en la misma transacción que las dos mutaciones del ledger.
type Movement struct {
	ID                    string
	TransferID            string
	ProductID             string
	SourceLocationID      string
	DestinationLocationID string
	Quantity              int64
	Kind                  string
	CreatedAt             time.Time
}

// MovementFilter filtros del listado de movimientos (más recientes primero).
type MovementFilter struct {
	ProductID  string
	LocationID string // origen o destino
	Limit      int
	Offset     int
}

package inventory

import (
	"context"

	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de traslados: las dos mutaciones del ledger y el movimiento
// se confirman juntas o no se confirma nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledger repository.LedgerRepository,
		movements repository.MovementRepository,
	) error) error

	// RunReadOnly ejecuta fn sobre un snapshot consistente sin tomar bloqueos.
	RunReadOnly(ctx context.Context, fn func(ledger repository.LedgerRepository) error) error
}

// EventPublisher sumidero de eventos de inventario. La publicación es best-effort:
// un fallo se registra en el log y nunca revierte el traslado ya confirmado.
type EventPublisher interface {
	PublishTransfer(ctx context.Context, result TransferResult) error
	PublishAlerts(ctx context.Context, report AlertReport) error
}

// NopPublisher descarta todos los eventos.
type NopPublisher struct{}

func (NopPublisher) PublishTransfer(context.Context, TransferResult) error { return nil }
func (NopPublisher) PublishAlerts(context.Context, AlertReport) error      { return nil }

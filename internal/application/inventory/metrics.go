package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/jhoicas/stock-transfer-api/internal/application/inventory"

// Resultados de un traslado tal como se etiquetan en métricas y logs.
const (
	OutcomeSuccess           = "success"
	OutcomeValidation        = "validation"
	OutcomeNotFound          = "not_found"
	OutcomeSourceNotFound    = "source_not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeLockTimeout       = "lock_timeout"
	OutcomeCommitConflict    = "commit_conflict"
	OutcomeStoreUnavailable  = "store_unavailable"
	OutcomeCanceled          = "canceled"
	OutcomeError             = "error"
)

// Outcome clasifica err en una etiqueta estable.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrSameLocation):
		return OutcomeValidation
	case errors.Is(err, domain.ErrSourceNotFound):
		return OutcomeSourceNotFound
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, domain.ErrLockTimeout):
		return OutcomeLockTimeout
	case errors.Is(err, domain.ErrCommitConflict):
		return OutcomeCommitConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return OutcomeStoreUnavailable
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}

type instruments struct {
	transfers metric.Int64Counter
	duration  metric.Float64Histogram
	retries   metric.Int64Counter
	alerts    metric.Int64Gauge
}

// newInstruments usa el MeterProvider global; sin telemetría configurada los instrumentos son no-op.
func newInstruments() instruments {
	meter := otel.Meter(instrumentationName)
	transfers, _ := meter.Int64Counter("inventory.transfers",
		metric.WithDescription("Traslados procesados por resultado"),
		metric.WithUnit("{transfer}"))
	duration, _ := meter.Float64Histogram("inventory.transfer.duration",
		metric.WithDescription("Duración de un traslado incluyendo reintentos"),
		metric.WithUnit("ms"))
	retries, _ := meter.Int64Counter("inventory.transfer.retries",
		metric.WithDescription("Reintentos internos por conflicto al confirmar"),
		metric.WithUnit("{retry}"))
	alerts, _ := meter.Int64Gauge("inventory.alerts",
		metric.WithDescription("Entradas bajo umbral en el último escaneo"),
		metric.WithUnit("{alert}"))
	return instruments{transfers: transfers, duration: duration, retries: retries, alerts: alerts}
}

func (i instruments) recordTransfer(ctx context.Context, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	i.transfers.Add(ctx, 1, attrs)
	i.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

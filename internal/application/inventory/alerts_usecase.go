package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
	"github.com/jhoicas/stock-transfer-api/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// AlertLevel gravedad de una alerta de stock bajo.
type AlertLevel string

const (
	AlertLevelCritical AlertLevel = "critical" // sin unidades
	AlertLevelWarning  AlertLevel = "warning"
)

// Alert entrada del ledger por debajo de su umbral mínimo.
type Alert struct {
	ProductID       string
	ProductName     string
	ProductSKU      string
	ProductCategory entity.Category
	LocationID      string
	LocationName    string
	LocationAddress string
	Quantity        int64
	MinThreshold    int64
	Deficit         int64
	Level           AlertLevel
	UpdatedAt       time.Time
}

// AlertSummary conteos del reporte.
type AlertSummary struct {
	TotalAlerts    int
	CriticalAlerts int
	WarningAlerts  int
}

// AlertReport resultado de un escaneo. LocationID vacío = todas las ubicaciones.
type AlertReport struct {
	Alerts      []Alert
	Summary     AlertSummary
	LocationID  string
	GeneratedAt time.Time
}

// AlertsUseCase escáner de alertas de stock bajo. Solo lee: cada escaneo corre sobre un snapshot
// único, así que nunca ve un traslado a medias ni bloquea a los que están en curso.
type AlertsUseCase struct {
	txRunner     TxRunner
	locationRepo repository.LocationRepository
	log          *logger.Logger
	tracer       trace.Tracer
	instruments  instruments
	now          func() time.Time
}

// NewAlertsUseCase construye el escáner. log puede ser nil.
func NewAlertsUseCase(txRunner TxRunner, locationRepo repository.LocationRepository, log *logger.Logger) *AlertsUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AlertsUseCase{
		txRunner:     txRunner,
		locationRepo: locationRepo,
		log:          log.Component("alerts"),
		tracer:       otel.Tracer(instrumentationName),
		instruments:  newInstruments(),
		now:          time.Now,
	}
}

// ListAlerts devuelve las entradas con quantity < min_threshold ordenadas por producto y ubicación.
// Con locationID filtra a una ubicación; si no existe devuelve domain.ErrNotFound.
func (uc *AlertsUseCase) ListAlerts(ctx context.Context, locationID string) (*AlertReport, error) {
	locationID = strings.TrimSpace(locationID)
	ctx, span := uc.tracer.Start(ctx, "inventory.ListAlerts", trace.WithAttributes(
		attribute.String("location_id", locationID),
	))
	defer span.End()

	if locationID != "" {
		location, err := uc.locationRepo.GetByID(ctx, locationID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if location == nil {
			return nil, fmt.Errorf("ubicación %s: %w", locationID, domain.ErrNotFound)
		}
	}

	var entries []entity.LowStockEntry
	err := uc.txRunner.RunReadOnly(ctx, func(ledger repository.LedgerRepository) error {
		var err error
		entries, err = ledger.ListBelowThreshold(ctx, locationID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "alert scan failed")
		uc.log.Error().Err(err).Str("location_id", locationID).Msg("alert scan failed")
		return nil, err
	}

	report := buildReport(entries, locationID, uc.now())
	uc.instruments.alerts.Record(ctx, int64(report.Summary.TotalAlerts),
		metric.WithAttributes(attribute.Bool("filtered", locationID != "")))
	span.SetAttributes(attribute.Int("alerts", report.Summary.TotalAlerts))
	uc.log.Debug().
		Str("location_id", locationID).
		Int("total_alerts", report.Summary.TotalAlerts).
		Int("critical_alerts", report.Summary.CriticalAlerts).
		Msg("alert scan")
	return report, nil
}

func buildReport(entries []entity.LowStockEntry, locationID string, now time.Time) *AlertReport {
	report := &AlertReport{
		Alerts:      make([]Alert, 0, len(entries)),
		LocationID:  locationID,
		GeneratedAt: now,
	}
	for _, e := range entries {
		if !e.BelowThreshold() {
			continue
		}
		level := AlertLevelWarning
		if e.Quantity == 0 {
			level = AlertLevelCritical
			report.Summary.CriticalAlerts++
		} else {
			report.Summary.WarningAlerts++
		}
		report.Alerts = append(report.Alerts, Alert{
			ProductID:       e.ProductID,
			ProductName:     e.ProductName,
			ProductSKU:      e.ProductSKU,
			ProductCategory: e.ProductCategory,
			LocationID:      e.LocationID,
			LocationName:    e.LocationName,
			LocationAddress: e.LocationAddress,
			Quantity:        e.Quantity,
			MinThreshold:    e.MinThreshold,
			Deficit:         e.Deficit(),
			Level:           level,
			UpdatedAt:       e.UpdatedAt,
		})
	}
	report.Summary.TotalAlerts = len(report.Alerts)
	return report
}

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-transfer-api/internal/application/inventory"
	"github.com/jhoicas/stock-transfer-api/pkg/logger"
)

// AlertScanJobName nombre del trabajo en el scheduler.
const AlertScanJobName = "inventory-alerts"

// AlertLister fuente del reporte de alertas (inventory.AlertsUseCase).
type AlertLister interface {
	ListAlerts(ctx context.Context, locationID string) (*inventory.AlertReport, error)
}

// AlertScanJob escanea todas las ubicaciones y publica el reporte cuando hay alertas.
type AlertScanJob struct {
	alerts    AlertLister
	publisher inventory.EventPublisher
	log       *logger.Logger
	timeout   time.Duration
}

func NewAlertScanJob(alerts AlertLister, publisher inventory.EventPublisher, log *logger.Logger) *AlertScanJob {
	if publisher == nil {
		publisher = inventory.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AlertScanJob{
		alerts:    alerts,
		publisher: publisher,
		log:       log.Component(AlertScanJobName),
		timeout:   30 * time.Second,
	}
}

// Run ejecuta un escaneo. Un reporte vacío no se publica.
func (j *AlertScanJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	report, err := j.alerts.ListAlerts(ctx, "")
	if err != nil {
		return fmt.Errorf("escaneo de alertas: %w", err)
	}

	j.log.Info().
		Int("total_alerts", report.Summary.TotalAlerts).
		Int("critical_alerts", report.Summary.CriticalAlerts).
		Int("warning_alerts", report.Summary.WarningAlerts).
		Msg("alert scan completed")

	if report.Summary.TotalAlerts == 0 {
		return nil
	}
	if err := j.publisher.PublishAlerts(ctx, *report); err != nil {
		j.log.Warn().Err(err).Msg("alert report not published")
	}
	return nil
}

// Schedule registra el escaneo en s. interval 0 lo deja desactivado.
func (j *AlertScanJob) Schedule(s *Scheduler, interval time.Duration) (bool, error) {
	return s.Register(AlertScanJobName, interval, j.Run)
}

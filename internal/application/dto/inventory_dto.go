package dto

import (
	"time"

	"github.com/jhoicas/stock-transfer-api/internal/application/inventory"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
)

// TransferResponse traslado confirmado (201).
type TransferResponse struct {
	TransferID            string    `json:"transfer_id"`
	ProductID             string    `json:"product_id"`
	SourceLocationID      string    `json:"source_location_id"`
	DestinationLocationID string    `json:"destination_location_id"`
	Quantity              int64     `json:"quantity"`
	SourceQuantity        int64     `json:"source_quantity"`
	DestinationQuantity   int64     `json:"destination_quantity"`
	DestinationCreated    bool      `json:"destination_created"`
	CreatedAt             time.Time `json:"created_at"`
}

// AlertResponse entrada bajo umbral.
type AlertResponse struct {
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name"`
	ProductSKU      string    `json:"product_sku"`
	ProductCategory string    `json:"product_category"`
	LocationID      string    `json:"location_id"`
	LocationName    string    `json:"location_name"`
	LocationAddress string    `json:"location_address"`
	Quantity        int64     `json:"quantity"`
	MinThreshold    int64     `json:"min_threshold"`
	Deficit         int64     `json:"deficit"`
	AlertLevel      string    `json:"alert_level"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AlertSummaryResponse conteos del reporte de alertas.
type AlertSummaryResponse struct {
	TotalAlerts    int `json:"total_alerts"`
	CriticalAlerts int `json:"critical_alerts"`
	WarningAlerts  int `json:"warning_alerts"`
}

// AlertFilterResponse filtro aplicado; LocationID vacío = todas.
type AlertFilterResponse struct {
	LocationID string `json:"location_id,omitempty"`
}

// AlertReportResponse cuerpo de GET /api/inventory/alerts.
type AlertReportResponse struct {
	Alerts      []AlertResponse      `json:"alerts"`
	Summary     AlertSummaryResponse `json:"summary"`
	Filter      AlertFilterResponse  `json:"filter"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// MovementResponse registro del log de movimientos.
type MovementResponse struct {
	ID                    string    `json:"id"`
	TransferID            string    `json:"transfer_id"`
	ProductID             string    `json:"product_id"`
	SourceLocationID      string    `json:"source_location_id"`
	DestinationLocationID string    `json:"destination_location_id"`
	Quantity              int64     `json:"quantity"`
	Kind                  string    `json:"kind"`
	CreatedAt             time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// FromTransferResult convierte el resultado del motor de traslados.
func FromTransferResult(r inventory.TransferResult) TransferResponse {
	return TransferResponse{
		TransferID:            r.TransferID,
		ProductID:             r.ProductID,
		SourceLocationID:      r.SourceLocationID,
		DestinationLocationID: r.DestinationLocationID,
		Quantity:              r.Quantity,
		SourceQuantity:        r.SourceQuantity,
		DestinationQuantity:   r.DestinationQuantity,
		DestinationCreated:    r.DestinationCreated,
		CreatedAt:             r.CreatedAt,
	}
}

// FromAlertReport convierte un reporte del escáner de alertas.
func FromAlertReport(r inventory.AlertReport) AlertReportResponse {
	alerts := make([]AlertResponse, 0, len(r.Alerts))
	for _, a := range r.Alerts {
		alerts = append(alerts, AlertResponse{
			ProductID:       a.ProductID,
			ProductName:     a.ProductName,
			ProductSKU:      a.ProductSKU,
			ProductCategory: string(a.ProductCategory),
			LocationID:      a.LocationID,
			LocationName:    a.LocationName,
			LocationAddress: a.LocationAddress,
			Quantity:        a.Quantity,
			MinThreshold:    a.MinThreshold,
			Deficit:         a.Deficit,
			AlertLevel:      string(a.Level),
			UpdatedAt:       a.UpdatedAt,
		})
	}
	return AlertReportResponse{
		Alerts: alerts,
		Summary: AlertSummaryResponse{
			TotalAlerts:    r.Summary.TotalAlerts,
			CriticalAlerts: r.Summary.CriticalAlerts,
			WarningAlerts:  r.Summary.WarningAlerts,
		},
		Filter:      AlertFilterResponse{LocationID: r.LocationID},
		GeneratedAt: r.GeneratedAt,
	}
}

// FromMovement convierte un registro del log de movimientos.
func FromMovement(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:                    m.ID,
		TransferID:            m.TransferID,
		ProductID:             m.ProductID,
		SourceLocationID:      m.SourceLocationID,
		DestinationLocationID: m.DestinationLocationID,
		Quantity:              m.Quantity,
		Kind:                  m.Kind,
		CreatedAt:             m.CreatedAt,
	}
}

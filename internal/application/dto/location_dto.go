package dto

import "time"

// CreateLocationRequest entrada para crear una ubicación (tienda o bodega).
type CreateLocationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// UpdateLocationRequest entrada para actualizar una ubicación.
type UpdateLocationRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// LedgerEntryResponse saldo de un producto en una ubicación.
type LedgerEntryResponse struct {
	ProductID      string    `json:"product_id"`
	LocationID     string    `json:"location_id"`
	Quantity       int64     `json:"quantity"`
	MinThreshold   int64     `json:"min_threshold"`
	BelowThreshold bool      `json:"below_threshold"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LocationInventoryResponse inventario completo de una ubicación.
type LocationInventoryResponse struct {
	Location LocationResponse      `json:"location"`
	Items    []LedgerEntryResponse `json:"items"`
}

// UpdateThresholdRequest body de PUT /api/locations/:id/inventory/:product_id/threshold.
type UpdateThresholdRequest struct {
	MinThreshold *int64 `json:"min_threshold"`
}

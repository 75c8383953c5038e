package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InitialStockRequest colocación inicial de stock al crear un producto.
type InitialStockRequest struct {
	LocationID   string `json:"location_id"`
	Quantity     int64  `json:"quantity"`
	MinThreshold *int64 `json:"min_threshold,omitempty"`
}

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU          string               `json:"sku"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Category     string               `json:"category"` // EL, FA, HO, TO, SP; vacío = HO
	Price        decimal.Decimal      `json:"price"`
	InitialStock *InitialStockRequest `json:"initial_stock,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto (el stock no se toca aquí).
type UpdateProductRequest struct {
	SKU         *string          `json:"sku"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
}

// ProductFilterRequest filtros de GET /api/products tal como llegan en la query.
type ProductFilterRequest struct {
	Category string `query:"category"`
	MinPrice string `query:"min_price"`
	MaxPrice string `query:"max_price"`
	InStock  string `query:"in_stock"`
	PageRequest
}

// StockByLocation saldo de un producto en una ubicación.
type StockByLocation struct {
	LocationID   string `json:"location_id"`
	Quantity     int64  `json:"quantity"`
	MinThreshold int64  `json:"min_threshold"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string            `json:"id"`
	SKU           string            `json:"sku"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	CategoryLabel string            `json:"category_label"`
	Price         decimal.Decimal   `json:"price"`
	TotalStock    int64             `json:"total_stock"`
	Stock         []StockByLocation `json:"stock,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

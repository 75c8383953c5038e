package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo.
// El stock se maneja por ubicación en LedgerEntry; aquí nunca hay cantidades.
type Product struct {
	ID          string
	SKU         string // código único
	Name        string
	Description string
	Category    Category
	Price       decimal.Decimal // precio de venta, no negativo
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductWithStock producto con el stock total agregado de todas sus ubicaciones.
type ProductWithStock struct {
	Product
	TotalStock int64
}

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Category *Category
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  *bool // true: stock total > 0; false: stock total = 0
	Limit    int
	Offset   int
}

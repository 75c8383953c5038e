package entity

import "time"

// LedgerEntry saldo de un producto en una ubicación. Existe a lo sumo una por (ProductID, LocationID).
// Quantity solo la modifica el motor de traslados y nunca baja de cero.
type LedgerEntry struct {
	ProductID    string
	LocationID   string
	Quantity     int64
	MinThreshold int64
	UpdatedAt    time.Time
}

// BelowThreshold indica si la entrada está por debajo de su umbral mínimo.
func (e LedgerEntry) BelowThreshold() bool {
	return e.Quantity < e.MinThreshold
}

// Deficit unidades que faltan para alcanzar el umbral (0 si no hay déficit).
func (e LedgerEntry) Deficit() int64 {
	if !e.BelowThreshold() {
		return 0
	}
	return e.MinThreshold - e.Quantity
}

// LowStockEntry entrada bajo umbral enriquecida con producto y ubicación (lectura del escáner de alertas).
type LowStockEntry struct {
	LedgerEntry
	ProductName     string
	ProductSKU      string
	ProductCategory Category
	LocationName    string
	LocationAddress string
}

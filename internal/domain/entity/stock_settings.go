package entity

import "time"

// Valores por defecto de la configuración de stock.
const (
	DefaultLowStockThreshold  = 10
	DefaultAllowNegativeStock = false
	DefaultAutoAdjustOnSale   = true
)

// StockSettings configuración global del inventario (singleton).
type StockSettings struct {
	LowStockThreshold  int
	AllowNegativeStock bool
	AutoAdjustOnSale   bool
	UpdatedAt          time.Time
}

// DefaultStockSettings devuelve la configuración inicial.
func DefaultStockSettings() StockSettings {
	return StockSettings{
		LowStockThreshold:  DefaultLowStockThreshold,
		AllowNegativeStock: DefaultAllowNegativeStock,
		AutoAdjustOnSale:   DefaultAutoAdjustOnSale,
	}
}

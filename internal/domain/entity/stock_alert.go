package entity

import "time"

// Tipos de alerta de stock.
const (
	AlertLowStock      = "LOW_STOCK"
	AlertOutOfStock    = "OUT_OF_STOCK"
	AlertNegativeStock = "NEGATIVE_STOCK"
)

// StockAlert notificación de nivel de stock. Como máximo una activa por producto.
type StockAlert struct {
	ID         string
	ProductID  string
	Kind       string
	Message    string
	Active     bool
	Threshold  int // nivel que disparó la alerta
	CreatedAt  time.Time
	ResolvedAt *time.Time
	ResolvedBy *string
}

// ValidAlertKind indica si k es un tipo de alerta conocido.
func ValidAlertKind(k string) bool {
	return k == AlertLowStock || k == AlertOutOfStock || k == AlertNegativeStock
}

package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// StockStatus clasificación de un nivel de stock.
type StockStatus string

const (
	StatusNegative   StockStatus = "NEGATIVE"
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StatusLow        StockStatus = "LOW"
	StatusInStock    StockStatus = "IN_STOCK"
)

// Classify implementa la precedencia de niveles (servicio de dominio):
// negativo y cero se evalúan antes que "bajo", sin importar el umbral configurado.
// Es la única función de clasificación: la usan las alertas y el reporte de stock.
func Classify(stock, threshold int) StockStatus {
	switch {
	case stock < 0:
		return StatusNegative
	case stock == 0:
		return StatusOutOfStock
	case stock < threshold:
		return StatusLow
	default:
		return StatusInStock
	}
}

// Label texto para reportes.
func (s StockStatus) Label() string {
	switch s {
	case StatusNegative:
		return "Stock negativo"
	case StatusOutOfStock:
		return "Agotado"
	case StatusLow:
		return "Stock bajo"
	default:
		return "En stock"
	}
}

// AlertKind tipo de alerta asociado al estado; vacío si no corresponde alerta.
func (s StockStatus) AlertKind() string {
	switch s {
	case StatusNegative:
		return entity.AlertNegativeStock
	case StatusOutOfStock:
		return entity.AlertOutOfStock
	case StatusLow:
		return entity.AlertLowStock
	}
	return ""
}

// AlertFor construye la alerta que corresponde a stock con el umbral dado, o nil.
// El umbral registrado es el propio stock para NEGATIVE/OUT_OF_STOCK y el umbral configurado para LOW_STOCK.
func AlertFor(product *entity.Product, stock, threshold int, now time.Time) *entity.StockAlert {
	status := Classify(stock, threshold)
	kind := status.AlertKind()
	if kind == "" {
		return nil
	}
	alert := &entity.StockAlert{
		ProductID: product.ID,
		Kind:      kind,
		Active:    true,
		Threshold: stock,
		CreatedAt: now,
	}
	switch status {
	case StatusNegative:
		alert.Message = fmt.Sprintf("%s tiene stock negativo (%d)", product.Title, stock)
	case StatusOutOfStock:
		alert.Message = fmt.Sprintf("%s está agotado", product.Title)
	case StatusLow:
		alert.Message = fmt.Sprintf("%s tiene stock bajo (%d restantes)", product.Title, stock)
		alert.Threshold = threshold
	}
	return alert
}

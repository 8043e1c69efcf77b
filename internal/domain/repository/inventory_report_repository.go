package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// InventoryTotals agregados de la tabla de productos.
type InventoryTotals struct {
	TotalProducts      int
	TotalStock         int
	TotalValue         decimal.Decimal // Σ stock × price
	LowStockCount      int             // stock < umbral
	OutOfStockCount    int             // stock = 0
	NegativeStockCount int             // stock < 0
}

// StockReportFilter filtros del reporte de stock.
type StockReportFilter struct {
	CategorySlug string
	// StockBelow, StockEqual: filtros de nivel; nil no filtra.
	StockBelow *int
	StockEqual *int
	Limit      int // 0 = sin límite (exportación)
	Offset     int
}

// StockReportItem fila cruda del reporte.
type StockReportItem struct {
	ProductID    string
	Title        string
	Slug         string
	CategoryName string // vacío si no tiene categoría
	Stock        int
	Price        decimal.Decimal
}

// InventoryReportRepository consultas agregadas para el tablero y las exportaciones.
type InventoryReportRepository interface {
	Totals(ctx context.Context, lowStockThreshold int) (*InventoryTotals, error)
	// StockReport filas ordenadas por título del producto y el total filtrado.
	StockReport(ctx context.Context, f StockReportFilter) ([]StockReportItem, int, error)
}

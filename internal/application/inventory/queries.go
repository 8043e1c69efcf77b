package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// Tamaños de página por defecto de los listados del personal.
const (
	DefaultTransactionsPageSize = 25
	DefaultAlertsPageSize       = 20
	DefaultReportPageSize       = 50
	MaxPageSize                 = 200
	DefaultHistoryDays          = 30
)

// QueryUseCase consultas de solo lectura del inventario.
type QueryUseCase struct {
	products     repository.ProductRepository
	transactions repository.StockTransactionRepository
	alerts       repository.StockAlertRepository
	reports      repository.InventoryReportRepository
	settings     *SettingsProvider
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(
	products repository.ProductRepository,
	transactions repository.StockTransactionRepository,
	alerts repository.StockAlertRepository,
	reports repository.InventoryReportRepository,
	settings *SettingsProvider,
) *QueryUseCase {
	return &QueryUseCase{
		products:     products,
		transactions: transactions,
		alerts:       alerts,
		reports:      reports,
		settings:     settings,
	}
}

// TransactionPage página de transacciones.
type TransactionPage struct {
	Items  []*entity.StockTransaction
	Total  int
	Limit  int
	Offset int
}

// ListTransactions lista el libro de stock con filtros y paginación.
func (uc *QueryUseCase) ListTransactions(ctx context.Context, f repository.TransactionFilter) (*TransactionPage, error) {
	if f.Kind != "" && !entity.ValidKind(f.Kind) {
		return nil, domain.Invalid("transaction_type", "desconocido: "+f.Kind)
	}
	if f.Reason != "" && !entity.ValidReason(f.Reason) {
		return nil, domain.Invalid("reason", "desconocido: "+f.Reason)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.Invalid("date_to", "anterior a date_from")
	}
	f.Limit, f.Offset = page(f.Limit, f.Offset, DefaultTransactionsPageSize)
	items, total, err := uc.transactions.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &TransactionPage{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// AlertPage página de alertas.
type AlertPage struct {
	Items  []*entity.StockAlert
	Total  int
	Limit  int
	Offset int
}

// ListAlerts lista alertas filtrando por estado y tipo.
func (uc *QueryUseCase) ListAlerts(ctx context.Context, f repository.AlertFilter) (*AlertPage, error) {
	if f.Kind != "" && !entity.ValidAlertKind(f.Kind) {
		return nil, domain.Invalid("alert_type", "desconocido: "+f.Kind)
	}
	f.Limit, f.Offset = page(f.Limit, f.Offset, DefaultAlertsPageSize)
	items, total, err := uc.alerts.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &AlertPage{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// InventorySummary estadísticas del tablero de inventario.
type InventorySummary struct {
	TotalProducts      int             `json:"total_products"`
	TotalStock         int             `json:"total_stock"`
	TotalValue         decimal.Decimal `json:"total_value"`
	LowStockCount      int             `json:"low_stock_count"`
	OutOfStockCount    int             `json:"out_of_stock_count"`
	NegativeStockCount int             `json:"negative_stock_count"`
	ActiveAlerts       int             `json:"active_alerts"`
	LowStockThreshold  int             `json:"low_stock_threshold"`
}

// Summary calcula el resumen con el umbral configurado.
func (uc *QueryUseCase) Summary(ctx context.Context) (*InventorySummary, error) {
	settings, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := uc.reports.Totals(ctx, settings.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	active, err := uc.alerts.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	return &InventorySummary{
		TotalProducts:      totals.TotalProducts,
		TotalStock:         totals.TotalStock,
		TotalValue:         totals.TotalValue,
		LowStockCount:      totals.LowStockCount,
		OutOfStockCount:    totals.OutOfStockCount,
		NegativeStockCount: totals.NegativeStockCount,
		ActiveAlerts:       active,
		LowStockThreshold:  settings.LowStockThreshold,
	}, nil
}

// LowStockProducts productos con stock por debajo del umbral configurado (incluye agotados y negativos).
func (uc *QueryUseCase) LowStockProducts(ctx context.Context) ([]*entity.Product, error) {
	settings, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return uc.products.ListStockBelow(ctx, settings.LowStockThreshold)
}

// OutOfStockProducts productos con stock exactamente cero.
func (uc *QueryUseCase) OutOfStockProducts(ctx context.Context) ([]*entity.Product, error) {
	return uc.products.ListStockEqual(ctx, 0)
}

// StockHistory transacciones de un producto en los últimos days días (más reciente primero).
func (uc *QueryUseCase) StockHistory(ctx context.Context, productID string, days int) ([]*entity.StockTransaction, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	since := time.Now().AddDate(0, 0, -days)
	return uc.transactions.ListByProductSince(ctx, productID, since)
}

func page(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

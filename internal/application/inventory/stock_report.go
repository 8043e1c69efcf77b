package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// Filtros de estado del reporte.
const (
	ReportStatusLow      = "low"
	ReportStatusOut      = "out"
	ReportStatusNegative = "negative"
)

// NoCategoryLabel texto para productos sin categoría.
const NoCategoryLabel = "Sin categoría"

// StockReportFilter filtros del reporte. Threshold nil usa el umbral configurado.
type StockReportFilter struct {
	CategorySlug string
	Status       string
	Threshold    *int
	Limit        int
	Offset       int
}

// StockReportRow fila del reporte con estado derivado.
type StockReportRow struct {
	ProductID string                `json:"product_id"`
	Product   string                `json:"product"`
	Slug      string                `json:"slug"`
	Category  string                `json:"category"`
	Stock     int                   `json:"stock"`
	Price     decimal.Decimal       `json:"price"`
	Status    inventory.StockStatus `json:"status"`
	Label     string                `json:"status_label"`
}

// StockReport reporte tabular de stock.
type StockReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Threshold   int              `json:"threshold"`
	Total       int              `json:"total"`
	Rows        []StockReportRow `json:"rows"`
}

// StockReportUseCase construye y exporta el reporte de niveles de stock.
type StockReportUseCase struct {
	reports   repository.InventoryReportRepository
	settings  *SettingsProvider
	renderers map[string]ReportRenderer
}

// NewStockReportUseCase construye el caso de uso. renderers se indexa por formato (csv, pdf, xml).
func NewStockReportUseCase(
	reports repository.InventoryReportRepository,
	settings *SettingsProvider,
	renderers map[string]ReportRenderer,
) *StockReportUseCase {
	return &StockReportUseCase{reports: reports, settings: settings, renderers: renderers}
}

// Build arma el reporte paginado. El estado de cada fila usa la misma clasificación que las alertas.
func (uc *StockReportUseCase) Build(ctx context.Context, f StockReportFilter) (*StockReport, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultReportPageSize
	}
	return uc.build(ctx, f)
}

func (uc *StockReportUseCase) build(ctx context.Context, f StockReportFilter) (*StockReport, error) {
	threshold := 0
	if f.Threshold != nil {
		if *f.Threshold < 0 {
			return nil, domain.Invalid("threshold", "no puede ser negativo")
		}
		threshold = *f.Threshold
	} else {
		settings, err := uc.settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		threshold = settings.LowStockThreshold
	}

	rf := repository.StockReportFilter{
		CategorySlug: f.CategorySlug,
		Limit:        f.Limit,
		Offset:       f.Offset,
	}
	switch strings.ToLower(f.Status) {
	case "":
	case ReportStatusLow:
		rf.StockBelow = &threshold
	case ReportStatusOut:
		zero := 0
		rf.StockEqual = &zero
	case ReportStatusNegative:
		zero := 0
		rf.StockBelow = &zero
	default:
		return nil, domain.Invalid("stock_status", "debe ser low, out o negative")
	}

	items, total, err := uc.reports.StockReport(ctx, rf)
	if err != nil {
		return nil, err
	}
	report := &StockReport{
		GeneratedAt: time.Now(),
		Threshold:   threshold,
		Total:       total,
		Rows:        make([]StockReportRow, 0, len(items)),
	}
	for _, it := range items {
		category := it.CategoryName
		if category == "" {
			category = NoCategoryLabel
		}
		status := inventory.Classify(it.Stock, threshold)
		report.Rows = append(report.Rows, StockReportRow{
			ProductID: it.ProductID,
			Product:   it.Title,
			Slug:      it.Slug,
			Category:  category,
			Stock:     it.Stock,
			Price:     it.Price,
			Status:    status,
			Label:     status.Label(),
		})
	}
	return report, nil
}

// ExportedReport archivo listo para descargar.
type ExportedReport struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export genera el reporte completo (sin paginar) en el formato pedido.
func (uc *StockReportUseCase) Export(ctx context.Context, f StockReportFilter, format string) (*ExportedReport, error) {
	renderer, ok := uc.renderers[strings.ToLower(format)]
	if !ok {
		return nil, domain.Invalid("format", "no soportado: "+format)
	}
	f.Limit, f.Offset = 0, 0
	report, err := uc.build(ctx, f)
	if err != nil {
		return nil, err
	}
	content, err := renderer.Render(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return &ExportedReport{
		Content:     content,
		ContentType: renderer.ContentType(),
		Filename:    "stock_report." + renderer.Extension(),
	}, nil
}

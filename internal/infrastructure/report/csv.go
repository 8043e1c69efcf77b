package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
)

// Cabeceras compartidas por CSV y PDF.
const (
	headerProduct  = "Producto"
	headerCategory = "Categoría"
	headerStock    = "Stock actual"
	headerPrice    = "Precio"
	headerStatus   = "Estado"
)

var _ inventory.ReportRenderer = (*CSVRenderer)(nil)

// CSVRenderer exporta el reporte como CSV UTF-8 con BOM (Excel lo abre con acentos correctos).
type CSVRenderer struct{}

func NewCSVRenderer() *CSVRenderer { return &CSVRenderer{} }

func (CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }
func (CSVRenderer) Extension() string   { return "csv" }

func (CSVRenderer) Render(_ context.Context, rep *inventory.StockReport) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{headerProduct, headerCategory, headerStock, headerPrice, headerStatus}); err != nil {
		return nil, err
	}
	for _, r := range rep.Rows {
		if err := w.Write([]string{
			r.Product,
			r.Category,
			fmt.Sprintf("%d", r.Stock),
			r.Price.StringFixed(2),
			r.Label,
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return buf.Bytes(), nil
}

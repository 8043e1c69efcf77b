// Package report implementa los formatos de exportación del reporte de stock.
//
// Layout del PDF (A4 horizontal):
//
//	┌──────────────────────────────────────────────────────────┐
//	│  HEADER: Reporte de inventario │ Fecha + umbral           │
//	│  TABLA: Producto | Categoría | Stock | Precio | Estado    │
//	│  TOTALES: productos / unidades / valor                    │
//	└──────────────────────────────────────────────────────────┘
package report

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	domaininv "github.com/jhoicas/tienda-api/internal/domain/inventory"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 176, Green: 30, Blue: 30}
	colorWarn    = &props.Color{Red: 196, Green: 120, Blue: 0}
)

var _ inventory.ReportRenderer = (*PDFRenderer)(nil)

// PDFRenderer genera el reporte de stock en PDF con Maroto v2.
type PDFRenderer struct {
	title string
}

// NewPDFRenderer construye el renderer. title vacío usa "Reporte de inventario".
func NewPDFRenderer(title string) *PDFRenderer {
	if title == "" {
		title = "Reporte de inventario"
	}
	return &PDFRenderer{title: title}
}

func (r *PDFRenderer) ContentType() string { return "application/pdf" }
func (r *PDFRenderer) Extension() string   { return "pdf" }

// Render genera el PDF y devuelve sus bytes.
func (r *PDFRenderer) Render(_ context.Context, rep *inventory.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(r.title, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(r.headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(rep.Rows)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(rep))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (r *PDFRenderer) headerRow(rep *inventory.StockReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(r.title, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%d productos", rep.Total), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(fmt.Sprintf("Umbral de stock bajo: %d", rep.Threshold), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h(headerProduct, 4, align.Left),
		h(headerCategory, 3, align.Left),
		h(headerStock, 1, align.Right),
		h(headerPrice, 2, align.Right),
		h(headerStatus, 2, align.Center),
	)
}

func tableRows(rows []inventory.StockReportRow) []core.Row {
	out := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		status := props.Text{Size: 8, Align: align.Center, Top: 1}
		switch r.Status {
		case domaininv.StatusNegative, domaininv.StatusOutOfStock:
			status.Color, status.Style = colorAlert, fontstyle.Bold
		case domaininv.StatusLow:
			status.Color = colorWarn
		}
		out = append(out, row.New(6).Add(
			col.New(4).Add(text.New(r.Product, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(r.Category, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", r.Stock), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatMoney(r.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(r.Label, status)),
		))
	}
	return out
}

func totalsRow(rep *inventory.StockReport) core.Row {
	units := 0
	value := decimal.Zero
	for _, r := range rep.Rows {
		units += r.Stock
		value = value.Add(r.Price.Mul(decimal.NewFromInt(int64(r.Stock))))
	}
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	val := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(label("Productos:", 1), label("Unidades:", 6), label("Valor del stock:", 11)),
		col.New(3).Add(
			val(fmt.Sprintf("%d", len(rep.Rows)), 1),
			val(fmt.Sprintf("%d", units), 6),
			val("$"+formatMoney(value), 11),
		),
	)
}

// formatMoney formatea con puntos de miles y coma decimal. Ej: 1234567.5 -> "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

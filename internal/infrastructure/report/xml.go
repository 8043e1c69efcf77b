package report

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
)

var _ inventory.ReportRenderer = (*XMLRenderer)(nil)

// XMLRenderer exporta el reporte como XML para integraciones (ERP, contabilidad).
type XMLRenderer struct{}

func NewXMLRenderer() *XMLRenderer { return &XMLRenderer{} }

func (XMLRenderer) ContentType() string { return "application/xml" }
func (XMLRenderer) Extension() string   { return "xml" }

func (XMLRenderer) Render(_ context.Context, rep *inventory.StockReport) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("StockReport")
	root.CreateAttr("generatedAt", rep.GeneratedAt.Format(time.RFC3339))
	root.CreateAttr("threshold", fmt.Sprintf("%d", rep.Threshold))
	root.CreateAttr("total", fmt.Sprintf("%d", rep.Total))

	for _, r := range rep.Rows {
		p := root.CreateElement("Product")
		p.CreateAttr("id", r.ProductID)
		p.CreateAttr("slug", r.Slug)
		p.CreateElement("Name").SetText(r.Product)
		p.CreateElement("Category").SetText(r.Category)
		p.CreateElement("Stock").SetText(fmt.Sprintf("%d", r.Stock))
		p.CreateElement("Price").SetText(r.Price.StringFixed(2))
		st := p.CreateElement("Status")
		st.CreateAttr("code", string(r.Status))
		st.SetText(r.Label)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xml: %w", err)
	}
	return out, nil
}

package report

import "github.com/jhoicas/tienda-api/internal/application/inventory"

// Renderers devuelve los formatos de exportación indexados por nombre (csv, pdf, xml).
func Renderers() map[string]inventory.ReportRenderer {
	return map[string]inventory.ReportRenderer{
		"csv": NewCSVRenderer(),
		"pdf": NewPDFRenderer(""),
		"xml": NewXMLRenderer(),
	}
}

package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	adjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_stock_adjustments_total",
		Help: "Ajustes de stock por tipo y resultado",
	}, []string{"kind", "result"})

	adjustmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_stock_adjustment_duration_seconds",
		Help:    "Duración de la unidad atómica de ajuste",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	alertsRaisedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_stock_alerts_raised_total",
		Help: "Alertas de stock creadas por tipo",
	}, []string{"kind"})

	orderLineFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_order_line_failures_total",
		Help: "Líneas de pedido cuyo descuento de stock falló",
	})
)

func adjustmentResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isInsufficient(err):
		return "insufficient_stock"
	case isNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

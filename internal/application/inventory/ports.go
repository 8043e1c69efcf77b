package inventory

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad atómica, pasando repositorios atados a ella.
// Commit si fn devuelve nil, Rollback en cualquier otro caso. Garantiza atomicidad para el motor de ajustes.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		txRepo repository.StockTransactionRepository,
		alertRepo repository.StockAlertRepository,
	) error) error
}

// AlertNotifier difunde una alerta recién creada (después del commit).
type AlertNotifier interface {
	NotifyAlert(ctx context.Context, product *entity.Product, alert *entity.StockAlert) error
}

// ReportRenderer convierte un reporte de stock a un formato exportable.
type ReportRenderer interface {
	Render(ctx context.Context, report *StockReport) ([]byte, error)
	ContentType() string
	Extension() string
}

type nopNotifier struct{}

func (nopNotifier) NotifyAlert(context.Context, *entity.Product, *entity.StockAlert) error { return nil }

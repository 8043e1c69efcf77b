package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// AlertFilter filtros del listado de alertas.
type AlertFilter struct {
	Active    *bool
	Kind      string
	ProductID string
	Limit     int
	Offset    int
}

// StockAlertRepository puerto de persistencia de alertas.
type StockAlertRepository interface {
	Create(ctx context.Context, alert *entity.StockAlert) error
	GetByID(ctx context.Context, id string) (*entity.StockAlert, error)
	// DeactivateActiveByProduct desactiva las alertas activas del producto sin fecha ni usuario de resolución.
	DeactivateActiveByProduct(ctx context.Context, productID string) (int, error)
	// Resolve marca la alerta inactiva con fecha y usuario de resolución.
	Resolve(ctx context.Context, id string, resolvedBy *string, at time.Time) error
	List(ctx context.Context, f AlertFilter) ([]*entity.StockAlert, int, error)
	CountActive(ctx context.Context) (int, error)
}

package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// AlertEvaluator deriva el estado de alerta de un producto a partir de su stock.
// Es el único que cambia el estado activo de las alertas durante un ajuste.
type AlertEvaluator struct{}

// NewAlertEvaluator construye el evaluador.
func NewAlertEvaluator() *AlertEvaluator { return &AlertEvaluator{} }

// Evaluate desactiva las alertas activas del producto y crea como máximo una nueva según
// la clasificación de stock. Se ejecuta con el repositorio de la transacción del ajuste.
func (e *AlertEvaluator) Evaluate(
	ctx context.Context,
	alertRepo repository.StockAlertRepository,
	product *entity.Product,
	stock, threshold int,
) (*entity.StockAlert, error) {
	if _, err := alertRepo.DeactivateActiveByProduct(ctx, product.ID); err != nil {
		return nil, err
	}
	alert := inventory.AlertFor(product, stock, threshold, time.Now())
	if alert == nil {
		return nil, nil
	}
	alert.ID = uuid.New().String()
	if err := alertRepo.Create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// AlertUseCase acciones del personal sobre alertas.
type AlertUseCase struct {
	repo repository.StockAlertRepository
}

// NewAlertUseCase construye el caso de uso.
func NewAlertUseCase(repo repository.StockAlertRepository) *AlertUseCase {
	return &AlertUseCase{repo: repo}
}

// Resolve marca la alerta como resuelta por userID. Resolver una alerta ya inactiva
// no cambia nada y no es error.
func (uc *AlertUseCase) Resolve(ctx context.Context, alertID string, userID *string) (*entity.StockAlert, error) {
	if alertID == "" {
		return nil, domain.Invalid("alert_id", "requerido")
	}
	alert, err := uc.repo.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, domain.ErrNotFound
	}
	if !alert.Active {
		return alert, nil
	}
	now := time.Now()
	if err := uc.repo.Resolve(ctx, alertID, userID, now); err != nil {
		return nil, err
	}
	alert.Active = false
	alert.ResolvedAt = &now
	alert.ResolvedBy = userID
	return alert, nil
}

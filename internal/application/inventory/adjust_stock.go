package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/tienda-api/internal/application/inventory")

// AdjustStockUseCase es el motor de ajustes: valida y aplica un delta de stock dentro de una
// unidad atómica con bloqueo de fila del producto, escribe el libro y evalúa alertas.
type AdjustStockUseCase struct {
	txRunner TxRunner
	settings *SettingsProvider
	alerts   *AlertEvaluator
	notifier AlertNotifier
	log      *logger.Logger
}

// NewAdjustStockUseCase construye el caso de uso. notifier puede ser nil.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	settings *SettingsProvider,
	alerts *AlertEvaluator,
	notifier AlertNotifier,
	log *logger.Logger,
) *AdjustStockUseCase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustStockUseCase{
		txRunner: txRunner,
		settings: settings,
		alerts:   alerts,
		notifier: notifier,
		log:      log.Component("stock_adjustment"),
	}
}

// AdjustStockInput entrada de un ajuste. Quantity es el delta con signo; el signo se
// normaliza según Kind (OUT/SALE negativos, IN/RETURN positivos).
type AdjustStockInput struct {
	ProductID   string
	Quantity    int
	Kind        string
	Reason      string
	Notes       string
	UserID      *string
	OrderItemID *string
}

func (in AdjustStockInput) validate() error {
	if in.ProductID == "" {
		return domain.Invalid("product_id", "requerido")
	}
	if in.Quantity == 0 {
		return domain.Invalid("quantity", "no puede ser cero")
	}
	if !inventory.QuantityInRange(in.Quantity) {
		return domain.Invalid("quantity", fmt.Sprintf("fuera de rango (máximo %d)", inventory.MaxQuantity))
	}
	if !entity.ValidKind(in.Kind) {
		return domain.Invalid("transaction_type", "desconocido: "+in.Kind)
	}
	if !entity.ValidReason(in.Reason) {
		return domain.Invalid("reason", "desconocido: "+in.Reason)
	}
	return nil
}

// AdjustStock aplica el ajuste y devuelve la transacción creada.
// Cada llamada es un delta auditado independiente: reintentar tras un éxito lo aplica dos veces.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (*entity.StockTransaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	quantity := inventory.NormalizeQuantity(in.Kind, in.Quantity)

	ctx, span := tracer.Start(ctx, "inventory.AdjustStock", trace.WithAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("stock.kind", in.Kind),
		attribute.Int("stock.quantity", quantity),
	))
	defer span.End()

	// La configuración se lee una sola vez, al inicio de la operación.
	settings, err := uc.settings.Get(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var (
		created *entity.StockTransaction
		alert   *entity.StockAlert
		product *entity.Product
	)
	start := time.Now()
	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		txRepo repository.StockTransactionRepository,
		alertRepo repository.StockAlertRepository,
	) error {
		// Bloquea la fila del producto hasta Commit/Rollback
		p, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		previous := p.Stock
		newStock := previous + quantity
		if !inventory.StockInRange(newStock) {
			return domain.Invalid("quantity", fmt.Sprintf("el stock resultante (%d) excede el rango permitido", newStock))
		}
		if newStock < 0 && !settings.AllowNegativeStock {
			return &domain.InsufficientStockError{
				ProductID: p.ID,
				Available: previous,
				Requested: absInt(quantity),
			}
		}
		if err := productRepo.UpdateStock(ctx, p.ID, newStock); err != nil {
			return err
		}
		t := &entity.StockTransaction{
			ID:            uuid.New().String(),
			ProductID:     p.ID,
			Kind:          in.Kind,
			Quantity:      quantity,
			Reason:        in.Reason,
			Notes:         in.Notes,
			PreviousStock: previous,
			NewStock:      newStock,
			UserID:        in.UserID,
			OrderItemID:   in.OrderItemID,
			CreatedAt:     time.Now(),
		}
		if err := txRepo.Create(ctx, t); err != nil {
			return err
		}
		a, err := uc.alerts.Evaluate(ctx, alertRepo, p, newStock, settings.LowStockThreshold)
		if err != nil {
			return err
		}
		p.Stock = newStock
		created, alert, product = t, a, p
		return nil
	})
	adjustmentDuration.Observe(time.Since(start).Seconds())
	adjustmentsTotal.WithLabelValues(in.Kind, adjustmentResult(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("stock.new", created.NewStock))
	uc.log.Info().
		Str("product_id", created.ProductID).
		Str("transaction_id", created.ID).
		Str("kind", created.Kind).
		Str("reason", created.Reason).
		Int("quantity", created.Quantity).
		Int("previous_stock", created.PreviousStock).
		Int("new_stock", created.NewStock).
		Msg("stock ajustado")

	if alert != nil {
		alertsRaisedTotal.WithLabelValues(alert.Kind).Inc()
		if err := uc.notifier.NotifyAlert(ctx, product, alert); err != nil {
			uc.log.Warn().Err(err).Str("alert_id", alert.ID).Msg("no se pudo difundir la alerta")
		}
	}
	return created, nil
}

// Acciones del ajuste rápido.
const (
	QuickActionAdd    = "add"
	QuickActionRemove = "remove"
)

// QuickAdjust ajuste rápido desde la ficha del producto: add -> IN, remove -> OUT.
func (uc *AdjustStockUseCase) QuickAdjust(
	ctx context.Context,
	productID, action string,
	quantity int,
	reason, notes string,
	userID *string,
) (*entity.StockTransaction, error) {
	var kind string
	switch action {
	case QuickActionAdd:
		kind = entity.TransactionKindIN
	case QuickActionRemove:
		kind = entity.TransactionKindOUT
		quantity = -absInt(quantity)
	default:
		return nil, domain.Invalid("action", "debe ser add o remove")
	}
	if !inventory.QuantityInRange(quantity) {
		return nil, domain.Invalid("quantity", fmt.Sprintf("fuera de rango (máximo %d)", inventory.MaxQuantity))
	}
	return uc.AdjustStock(ctx, AdjustStockInput{
		ProductID: productID,
		Quantity:  quantity,
		Kind:      kind,
		Reason:    reason,
		Notes:     notes,
		UserID:    userID,
	})
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func isInsufficient(err error) bool { return errors.Is(err, domain.ErrInsufficientStock) }
func isNotFound(err error) bool     { return errors.Is(err, domain.ErrNotFound) }

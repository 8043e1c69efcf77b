package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// OrderCompletionUseCase descuenta stock cuando el checkout marca un pedido como completado.
// El checkout lo invoca explícitamente; un fallo de inventario nunca revierte el pedido.
type OrderCompletionUseCase struct {
	adjust   *AdjustStockUseCase
	settings *SettingsProvider
	log      *logger.Logger
}

// NewOrderCompletionUseCase construye el adaptador.
func NewOrderCompletionUseCase(adjust *AdjustStockUseCase, settings *SettingsProvider, log *logger.Logger) *OrderCompletionUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderCompletionUseCase{adjust: adjust, settings: settings, log: log.Component("order_completion")}
}

// OrderLineFailure línea cuyo ajuste falló.
type OrderLineFailure struct {
	OrderItemID string
	ProductID   string
	Message     string
	Err         error
}

// OrderAdjustmentResult resumen del procesamiento de un pedido.
type OrderAdjustmentResult struct {
	Skipped      bool // auto_adjust_on_sale desactivado
	Transactions []*entity.StockTransaction
	Failures     []OrderLineFailure
}

// OnOrderCompleted aplica una venta (SALE/SALE) por cada línea del pedido. Cada línea es
// independiente: un error se registra y no impide procesar las demás.
func (uc *OrderCompletionUseCase) OnOrderCompleted(ctx context.Context, order *entity.Order) (*OrderAdjustmentResult, error) {
	settings, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	res := &OrderAdjustmentResult{}
	if !settings.AutoAdjustOnSale {
		res.Skipped = true
		uc.log.Debug().Str("order_id", order.ID).Msg("ajuste automático desactivado, pedido ignorado")
		return res, nil
	}

	for _, item := range order.Items {
		itemID := item.ID
		var orderItemID *string
		if itemID != "" {
			orderItemID = &itemID
		}
		t, err := uc.adjust.AdjustStock(ctx, AdjustStockInput{
			ProductID:   item.ProductID,
			Quantity:    -item.Quantity,
			Kind:        entity.TransactionKindSALE,
			Reason:      entity.ReasonSALE,
			Notes:       fmt.Sprintf("Pedido #%s - %s", order.ID, item.ProductTitle),
			UserID:      order.UserID,
			OrderItemID: orderItemID,
		})
		if err != nil {
			orderLineFailuresTotal.Inc()
			uc.log.Warn().Err(err).
				Str("order_id", order.ID).
				Str("order_item_id", item.ID).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("error ajustando stock de la línea del pedido")
			res.Failures = append(res.Failures, OrderLineFailure{
				OrderItemID: item.ID,
				ProductID:   item.ProductID,
				Message:     err.Error(),
				Err:         err,
			})
			continue
		}
		res.Transactions = append(res.Transactions, t)
	}
	return res, nil
}

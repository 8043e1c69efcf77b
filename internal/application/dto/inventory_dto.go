package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	domaininv "github.com/jhoicas/tienda-api/internal/domain/inventory"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
type AdjustStockRequest struct {
	ProductID       string `json:"product_id" validate:"required,max=64"`
	Quantity        int    `json:"quantity" validate:"required,ne=0,min=-2147483647,max=2147483647"`
	TransactionType string `json:"transaction_type" validate:"required,oneof=IN OUT ADJUSTMENT SALE RETURN"`
	Reason          string `json:"reason" validate:"required,oneof=PURCHASE SALE DAMAGED EXPIRED MANUAL RETURN INITIAL CORRECTION"`
	Notes           string `json:"notes" validate:"max=500"`
}

// QuickAdjustRequest body para POST /api/inventory/adjustments/quick.
type QuickAdjustRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Action    string `json:"action" validate:"required,oneof=add remove"`
	Quantity  int    `json:"quantity" validate:"required,gt=0,max=2147483647"`
	Reason    string `json:"reason" validate:"omitempty,oneof=PURCHASE SALE DAMAGED EXPIRED MANUAL RETURN INITIAL CORRECTION"`
	Notes     string `json:"notes" validate:"max=500"`
}

// BulkAdjustRequest body para POST /api/inventory/bulk. Las filas se validan una a una en el caso de uso.
type BulkAdjustRequest struct {
	Rows []BulkRowRequest `json:"rows" validate:"required,min=1,max=5000,dive"`
}

// BulkRowRequest fila del ajuste masivo. transaction_type y reason vacíos usan ADJUSTMENT/MANUAL.
type BulkRowRequest struct {
	ProductSlug     string `json:"product_slug"`
	Quantity        int    `json:"quantity" validate:"min=-2147483647,max=2147483647"`
	TransactionType string `json:"transaction_type"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
}

// ToBulkRows numera las filas desde 1.
func (r BulkAdjustRequest) ToBulkRows() []inventory.BulkRow {
	out := make([]inventory.BulkRow, 0, len(r.Rows))
	for i, row := range r.Rows {
		out = append(out, inventory.BulkRow{
			Row:         i + 1,
			ProductSlug: row.ProductSlug,
			Quantity:    row.Quantity,
			Kind:        row.TransactionType,
			Reason:      row.Reason,
			Notes:       row.Notes,
		})
	}
	return out
}

// StockTransactionResponse entrada del libro de stock.
type StockTransactionResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes,omitempty"`
	PreviousStock   int       `json:"previous_stock"`
	NewStock        int       `json:"new_stock"`
	UserID          *string   `json:"user_id,omitempty"`
	OrderItemID     *string   `json:"order_item_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// FromStockTransaction mapea la entidad a la respuesta.
func FromStockTransaction(t *entity.StockTransaction) StockTransactionResponse {
	return StockTransactionResponse{
		ID:              t.ID,
		ProductID:       t.ProductID,
		TransactionType: t.Kind,
		Quantity:        t.Quantity,
		Reason:          t.Reason,
		Notes:           t.Notes,
		PreviousStock:   t.PreviousStock,
		NewStock:        t.NewStock,
		UserID:          t.UserID,
		OrderItemID:     t.OrderItemID,
		CreatedAt:       t.CreatedAt,
	}
}

// FromStockTransactions mapea una lista; nunca devuelve nil.
func FromStockTransactions(ts []*entity.StockTransaction) []StockTransactionResponse {
	out := make([]StockTransactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, FromStockTransaction(t))
	}
	return out
}

// TransactionListResponse página del libro de stock.
type TransactionListResponse struct {
	Items []StockTransactionResponse `json:"items"`
	Page  PageResponse               `json:"page"`
}

// StockAlertResponse alerta de stock.
type StockAlertResponse struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"product_id"`
	AlertType  string     `json:"alert_type"`
	Message    string     `json:"message"`
	IsActive   bool       `json:"is_active"`
	Threshold  int        `json:"threshold"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy *string    `json:"resolved_by,omitempty"`
}

// FromStockAlert mapea la entidad a la respuesta.
func FromStockAlert(a *entity.StockAlert) StockAlertResponse {
	return StockAlertResponse{
		ID:         a.ID,
		ProductID:  a.ProductID,
		AlertType:  a.Kind,
		Message:    a.Message,
		IsActive:   a.Active,
		Threshold:  a.Threshold,
		CreatedAt:  a.CreatedAt,
		ResolvedAt: a.ResolvedAt,
		ResolvedBy: a.ResolvedBy,
	}
}

// AlertListResponse página de alertas.
type AlertListResponse struct {
	Items []StockAlertResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// StockSettingsResponse configuración de inventario.
type StockSettingsResponse struct {
	LowStockThreshold  int       `json:"low_stock_threshold"`
	AllowNegativeStock bool      `json:"allow_negative_stock"`
	AutoAdjustOnSale   bool      `json:"auto_adjust_on_sale"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// FromStockSettings mapea la configuración.
func FromStockSettings(s *entity.StockSettings) StockSettingsResponse {
	return StockSettingsResponse{
		LowStockThreshold:  s.LowStockThreshold,
		AllowNegativeStock: s.AllowNegativeStock,
		AutoAdjustOnSale:   s.AutoAdjustOnSale,
		UpdatedAt:          s.UpdatedAt,
	}
}

// UpdateStockSettingsRequest body para PUT /api/inventory/settings. Campos omitidos no cambian.
type UpdateStockSettingsRequest struct {
	LowStockThreshold  *int  `json:"low_stock_threshold" validate:"omitempty,min=0"`
	AllowNegativeStock *bool `json:"allow_negative_stock"`
	AutoAdjustOnSale   *bool `json:"auto_adjust_on_sale"`
}

// ToPatch convierte a SettingsPatch.
func (r UpdateStockSettingsRequest) ToPatch() inventory.SettingsPatch {
	return inventory.SettingsPatch{
		LowStockThreshold:  r.LowStockThreshold,
		AllowNegativeStock: r.AllowNegativeStock,
		AutoAdjustOnSale:   r.AutoAdjustOnSale,
	}
}

// ProductStockResponse producto en los listados de stock bajo / agotado.
type ProductStockResponse struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Slug   string          `json:"slug"`
	Stock  int             `json:"stock"`
	Price  decimal.Decimal `json:"price"`
	Status string          `json:"status"`
}

// FromProducts mapea productos clasificando su stock con threshold.
func FromProducts(ps []*entity.Product, threshold int) []ProductStockResponse {
	out := make([]ProductStockResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProductStockResponse{
			ID:     p.ID,
			Title:  p.Title,
			Slug:   p.Slug,
			Stock:  p.Stock,
			Price:  p.Price,
			Status: string(domaininv.Classify(p.Stock, threshold)),
		})
	}
	return out
}

// OrderCompletedRequest body para POST /api/orders/completed (lo envía el checkout).
type OrderCompletedRequest struct {
	OrderID string             `json:"order_id" validate:"required,max=64"`
	UserID  *string            `json:"user_id" validate:"omitempty,max=64"`
	Items   []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest línea del pedido completado.
type OrderItemRequest struct {
	ID           string `json:"id" validate:"max=64"`
	ProductID    string `json:"product_id" validate:"required,max=64"`
	ProductTitle string `json:"product_title"`
	Quantity     int    `json:"quantity" validate:"required,gt=0,max=2147483647"`
}

// ToOrder convierte a la entidad del dominio.
func (r OrderCompletedRequest) ToOrder() *entity.Order {
	o := &entity.Order{ID: r.OrderID, UserID: r.UserID, Items: make([]entity.OrderItem, 0, len(r.Items))}
	for _, it := range r.Items {
		o.Items = append(o.Items, entity.OrderItem{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ProductTitle: it.ProductTitle,
			Quantity:     it.Quantity,
		})
	}
	return o
}

// OrderLineFailureResponse línea del pedido que no se pudo descontar.
type OrderLineFailureResponse struct {
	OrderItemID string `json:"order_item_id"`
	ProductID   string `json:"product_id"`
	Message     string `json:"message"`
}

// OrderCompletedResponse resultado del descuento de stock del pedido.
type OrderCompletedResponse struct {
	Skipped      bool                       `json:"skipped"`
	Transactions []StockTransactionResponse `json:"transactions"`
	Failures     []OrderLineFailureResponse `json:"failures"`
}

// FromOrderResult mapea el resultado del caso de uso.
func FromOrderResult(res *inventory.OrderAdjustmentResult) OrderCompletedResponse {
	out := OrderCompletedResponse{
		Skipped:      res.Skipped,
		Transactions: FromStockTransactions(res.Transactions),
		Failures:     make([]OrderLineFailureResponse, 0, len(res.Failures)),
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, OrderLineFailureResponse{
			OrderItemID: f.OrderItemID,
			ProductID:   f.ProductID,
			Message:     f.Message,
		})
	}
	return out
}

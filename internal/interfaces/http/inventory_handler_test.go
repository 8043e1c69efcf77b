package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-api/internal/infrastructure/report"
	apphttp "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	store.AddCategory(entity.Category{ID: "cat-gorras", Name: "Gorras", Slug: "gorras"})
	cat := "cat-gorras"
	store.AddProduct(entity.Product{ID: "p-roja", CategoryID: &cat, Title: "Gorra roja", Slug: "gorra-roja", Price: decimal.NewFromInt(20), Stock: 2, Available: true})
	store.AddProduct(entity.Product{ID: "p-azul", CategoryID: &cat, Title: "Gorra azul", Slug: "gorra-azul", Price: decimal.NewFromInt(25), Stock: 50, Available: true})

	log := logger.Nop()
	settings := inventory.NewSettingsProvider(store.Settings())
	adjust := inventory.NewAdjustStockUseCase(store, settings, inventory.NewAlertEvaluator(), nil, log)

	app := apphttp.NewApp("tienda-test", 1)
	apphttp.Router(app, apphttp.RouterDeps{
		Adjust:    adjust,
		Bulk:      inventory.NewBulkAdjustUseCase(adjust, store.Products(), log),
		Alerts:    inventory.NewAlertUseCase(store.Alerts()),
		Settings:  settings,
		Queries:   inventory.NewQueryUseCase(store.Products(), store.Transactions(), store.Alerts(), store.Reports(), settings),
		Report:    inventory.NewStockReportUseCase(store.Reports(), settings, report.Renderers()),
		Orders:    inventory.NewOrderCompletionUseCase(adjust, settings, log),
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
		Log:       log,
	})
	return &testServer{app: app, store: store}
}

func (s *testServer) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := s.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestAdjustStock_Crea201(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/adjustments", "staff", dto.AdjustStockRequest{
		ProductID: "p-azul", Quantity: 5, TransactionType: "OUT", Reason: "DAMAGED", Notes: "caja mojada",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode[dto.StockTransactionResponse](t, resp)
	assert.Equal(t, -5, body.Quantity)
	assert.Equal(t, 50, body.PreviousStock)
	assert.Equal(t, 45, body.NewStock)
	require.NotNil(t, body.UserID)
	assert.Equal(t, testUserID, *body.UserID)
	assert.Equal(t, 45, s.stock(t, "p-azul"))
}

func TestAdjustStock_StockInsuficiente409(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/adjustments", "admin", dto.AdjustStockRequest{
		ProductID: "p-roja", Quantity: 5, TransactionType: "OUT", Reason: "MANUAL",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, "stock insuficiente. Disponible: 2, solicitado: 5", body.Message)
	assert.Equal(t, 2, s.stock(t, "p-roja"))
}

func TestAdjustStock_Validacion400(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/adjustments", "staff", map[string]any{
		"product_id": "p-azul", "quantity": 1, "transaction_type": "TRANSFER", "reason": "MANUAL",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	require.NotEmpty(t, body.Details)
	assert.Equal(t, "transaction_type", body.Details[0].Field)
}

func TestAdjustStock_CantidadFueraDeRango400(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/adjustments", "staff", map[string]any{
		"product_id": "p-azul", "quantity": int64(3_000_000_000), "transaction_type": "IN", "reason": "PURCHASE",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	require.NotEmpty(t, body.Details)
	assert.Equal(t, "quantity", body.Details[0].Field)
	assert.Equal(t, 50, s.stock(t, "p-azul"))

	resp = s.do(t, http.MethodPost, "/api/inventory/bulk", "staff", map[string]any{
		"rows": []map[string]any{{"product_slug": "gorra-azul", "quantity": int64(-3_000_000_000)}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 50, s.stock(t, "p-azul"))
}

func TestAdjustStock_ProductoInexistente404(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/adjustments", "staff", dto.AdjustStockRequest{
		ProductID: "no-existe", Quantity: 1, TransactionType: "IN", Reason: "PURCHASE",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInventario_ClienteNoAutorizado(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/inventory/summary", "customer", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/inventory/summary", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestQuickAdjust_RemoveUsaMotivoManual(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/adjustments/quick", "staff", dto.QuickAdjustRequest{
		ProductID: "p-azul", Action: "remove", Quantity: 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode[dto.StockTransactionResponse](t, resp)
	assert.Equal(t, "OUT", body.TransactionType)
	assert.Equal(t, "MANUAL", body.Reason)
	assert.Equal(t, 47, s.stock(t, "p-azul"))
}

func TestBulkAdjust_JSONErroresPorFila(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/bulk", "staff", dto.BulkAdjustRequest{Rows: []dto.BulkRowRequest{
		{ProductSlug: "gorra-azul", Quantity: 10, TransactionType: "IN", Reason: "PURCHASE"},
		{ProductSlug: "no-existe", Quantity: 1},
		{ProductSlug: "gorra-roja", Quantity: -1},
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[inventory.BulkResult](t, resp)
	assert.Equal(t, 2, body.SuccessCount)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, 2, body.Errors[0].Row)
	assert.Equal(t, 60, s.stock(t, "p-azul"))
	assert.Equal(t, 1, s.stock(t, "p-roja"))
}

func TestBulkAdjust_CSV(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "ajustes.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("product_slug,quantity,transaction_type,reason,notes\ngorra-azul,-4,ADJUSTMENT,CORRECTION,conteo\ngorra-roja,abc,IN,PURCHASE,\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("charset", "utf-8"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/bulk/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", tokenForRole(t, "staff"))
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[inventory.BulkResult](t, resp)
	assert.Equal(t, 1, body.SuccessCount)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, 3, body.Errors[0].Row)
	assert.Equal(t, 46, s.stock(t, "p-azul"))
}

func TestListTransactions_FiltraYPagina(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		resp := s.do(t, http.MethodPost, "/api/inventory/adjustments", "staff", dto.AdjustStockRequest{
			ProductID: "p-azul", Quantity: 1, TransactionType: "IN", Reason: "PURCHASE",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := s.do(t, http.MethodGet, "/api/inventory/transactions?product_id=p-azul&transaction_type=in&limit=2", "staff", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.TransactionListResponse](t, resp)
	assert.Len(t, body.Items, 2)
	assert.Equal(t, 3, body.Page.Total)
	assert.Equal(t, 53, body.Items[0].NewStock, "más reciente primero")

	resp = s.do(t, http.MethodGet, "/api/inventory/transactions?date_from=ayer", "staff", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAlertas_ListarYResolver(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/adjustments", "staff", dto.AdjustStockRequest{
		ProductID: "p-roja", Quantity: 2, TransactionType: "SALE", Reason: "SALE",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/inventory/alerts?is_active=true", "staff", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.AlertListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, entity.AlertOutOfStock, list.Items[0].AlertType)

	resp = s.do(t, http.MethodPost, "/api/inventory/alerts/"+list.Items[0].ID+"/resolve", "staff", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resolved := decode[dto.StockAlertResponse](t, resp)
	assert.False(t, resolved.IsActive)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, testUserID, *resolved.ResolvedBy)

	resp = s.do(t, http.MethodPost, "/api/inventory/alerts/no-existe/resolve", "staff", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettings_ObtenerYActualizar(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/inventory/settings", "staff", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.StockSettingsResponse](t, resp)
	assert.Equal(t, entity.DefaultLowStockThreshold, got.LowStockThreshold)

	resp = s.do(t, http.MethodPut, "/api/inventory/settings", "admin", map[string]any{"low_stock_threshold": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/inventory/settings", "admin", map[string]any{"low_stock_threshold": 3, "allow_negative_stock": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[dto.StockSettingsResponse](t, resp)
	assert.Equal(t, 3, got.LowStockThreshold)
	assert.True(t, got.AllowNegativeStock)
	assert.True(t, got.AutoAdjustOnSale)
}

func TestSummaryYListados(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/inventory/summary", "staff", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sum := decode[inventory.InventorySummary](t, resp)
	assert.Equal(t, 2, sum.TotalProducts)
	assert.Equal(t, 52, sum.TotalStock)
	assert.Equal(t, 1, sum.LowStockCount)

	resp = s.do(t, http.MethodGet, "/api/inventory/low-stock", "staff", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	low := decode[[]dto.ProductStockResponse](t, resp)
	require.Len(t, low, 1)
	assert.Equal(t, "gorra-roja", low[0].Slug)
	assert.Equal(t, "LOW", low[0].Status)

	resp = s.do(t, http.MethodGet, "/api/inventory/out-of-stock", "staff", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]dto.ProductStockResponse](t, resp))
}

func TestStockReport_JSONYCSV(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/inventory/report?stock_status=low", "staff", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decode[inventory.StockReport](t, resp)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "Gorra roja", rep.Rows[0].Product)
	assert.Equal(t, "Stock bajo", rep.Rows[0].Label)

	resp = s.do(t, http.MethodGet, "/api/inventory/report?format=csv", "staff", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "stock_report.csv")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Producto,Categoría,Stock actual,Precio,Estado")
	assert.Contains(t, string(raw), "Gorra azul,Gorras,50,25.00,En stock")

	resp = s.do(t, http.MethodGet, "/api/inventory/report?format=docx", "staff", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOrderCompleted_Servicio(t *testing.T) {
	s := newTestServer(t)
	order := dto.OrderCompletedRequest{
		OrderID: "ord-1",
		Items: []dto.OrderItemRequest{
			{ID: "it-1", ProductID: "p-azul", ProductTitle: "Gorra azul", Quantity: 2},
			{ID: "it-2", ProductID: "p-roja", ProductTitle: "Gorra roja", Quantity: 9},
		},
	}
	resp := s.do(t, http.MethodPost, "/api/orders/completed", "staff", order)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/orders/completed", "service", order)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.OrderCompletedResponse](t, resp)
	assert.False(t, body.Skipped)
	require.Len(t, body.Transactions, 1)
	assert.Equal(t, "SALE", body.Transactions[0].TransactionType)
	require.Len(t, body.Failures, 1)
	assert.Equal(t, "it-2", body.Failures[0].OrderItemID)
	assert.Equal(t, 48, s.stock(t, "p-azul"))
	assert.Equal(t, 2, s.stock(t, "p-roja"))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

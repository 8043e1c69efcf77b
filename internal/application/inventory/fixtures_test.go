package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// testEnv arma los casos de uso sobre el almacén en memoria.
type testEnv struct {
	store    *memory.Store
	settings *inventory.SettingsProvider
	adjust   *inventory.AdjustStockUseCase
	bulk     *inventory.BulkAdjustUseCase
	orders   *inventory.OrderCompletionUseCase
	alerts   *inventory.AlertUseCase
	queries  *inventory.QueryUseCase
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	store.AddCategory(entity.Category{ID: "cat-ropa", Name: "Ropa", Slug: "ropa"})

	log := logger.Nop()
	settings := inventory.NewSettingsProvider(store.Settings())
	notifier := &recordingNotifier{}
	adjust := inventory.NewAdjustStockUseCase(store, settings, inventory.NewAlertEvaluator(), notifier, log)
	return &testEnv{
		store:    store,
		settings: settings,
		adjust:   adjust,
		bulk:     inventory.NewBulkAdjustUseCase(adjust, store.Products(), log),
		orders:   inventory.NewOrderCompletionUseCase(adjust, settings, log),
		alerts:   inventory.NewAlertUseCase(store.Alerts()),
		queries:  inventory.NewQueryUseCase(store.Products(), store.Transactions(), store.Alerts(), store.Reports(), settings),
		notifier: notifier,
	}
}

// product registra un producto de la categoría ropa con el stock indicado.
func (e *testEnv) product(id, slug string, stock int) {
	cat := "cat-ropa"
	e.store.AddProduct(entity.Product{
		ID:         id,
		CategoryID: &cat,
		Title:      "Producto " + slug,
		Slug:       slug,
		Price:      decimal.NewFromInt(10),
		Stock:      stock,
		Available:  true,
	})
}

func (e *testEnv) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (e *testEnv) setSettings(t *testing.T, patch inventory.SettingsPatch) {
	t.Helper()
	_, err := e.settings.Update(context.Background(), patch)
	require.NoError(t, err)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
func strPtr(v string) *string {
	return &v
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []*entity.StockAlert
}

func (n *recordingNotifier) NotifyAlert(_ context.Context, _ *entity.Product, a *entity.StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

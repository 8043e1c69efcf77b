package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

func TestSettings_CreaValoresPorDefecto(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := env.settings.Get(ctx)
			assert.NoError(t, err)
			assert.Equal(t, entity.DefaultLowStockThreshold, s.LowStockThreshold)
		}()
	}
	wg.Wait()

	n, err := env.store.Settings().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "un solo registro de configuración")
}

func TestSettings_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.settings.Update(ctx, inventory.SettingsPatch{LowStockThreshold: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, s.LowStockThreshold)
	assert.False(t, s.AllowNegativeStock)
	assert.True(t, s.AutoAdjustOnSale)

	_, err = env.settings.Update(ctx, inventory.SettingsPatch{LowStockThreshold: intPtr(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := env.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.LowStockThreshold)

	def := entity.DefaultStockSettings()
	assert.ErrorIs(t, env.store.Settings().Create(ctx, &def), domain.ErrMultipleSingletons)
}

func TestSettings_UmbralAplicaAlSiguienteAjuste(t *testing.T) {
	env := newTestEnv(t)
	env.product("p1", "camiseta", 6)
	env.setSettings(t, inventory.SettingsPatch{LowStockThreshold: intPtr(5)})

	_, err := env.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "p1", Quantity: 1, Kind: entity.TransactionKindIN, Reason: entity.ReasonPURCHASE,
	})
	require.NoError(t, err)
	assert.Empty(t, activeAlerts(t, env, "p1"), "7 no es bajo con umbral 5")
}

func TestResolveAlert(t *testing.T) {
	env := newTestEnv(t)
	env.product("p1", "camiseta", 3)
	ctx := context.Background()

	_, err := env.adjust.AdjustStock(ctx, inventory.AdjustStockInput{
		ProductID: "p1", Quantity: -1, Kind: entity.TransactionKindOUT, Reason: entity.ReasonDAMAGED,
	})
	require.NoError(t, err)
	alerts := activeAlerts(t, env, "p1")
	require.Len(t, alerts, 1)

	resolved, err := env.alerts.Resolve(ctx, alerts[0].ID, strPtr("admin-1"))
	require.NoError(t, err)
	assert.False(t, resolved.Active)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "admin-1", *resolved.ResolvedBy)

	// Resolver de nuevo no cambia quién la resolvió.
	again, err := env.alerts.Resolve(ctx, alerts[0].ID, strPtr("admin-2"))
	require.NoError(t, err)
	assert.Equal(t, "admin-1", *again.ResolvedBy)

	_, err = env.alerts.Resolve(ctx, "no-existe", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.alerts.Resolve(ctx, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListAlerts_FiltraPorEstadoYTipo(t *testing.T) {
	env := newTestEnv(t)
	env.product("p1", "camiseta", 3)
	env.product("p2", "gorra", 1)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2"} {
		_, err := env.adjust.AdjustStock(ctx, inventory.AdjustStockInput{
			ProductID: id, Quantity: -1, Kind: entity.TransactionKindOUT, Reason: entity.ReasonSALE,
		})
		require.NoError(t, err)
	}

	active := true
	page, err := env.queries.ListAlerts(ctx, repository.AlertFilter{Active: &active})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, inventory.DefaultAlertsPageSize, page.Limit)

	page, err = env.queries.ListAlerts(ctx, repository.AlertFilter{Kind: entity.AlertOutOfStock})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "p2", page.Items[0].ProductID)

	_, err = env.queries.ListAlerts(ctx, repository.AlertFilter{Kind: "CRITICAL"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

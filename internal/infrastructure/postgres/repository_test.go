package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
)

// Un id que no es UUID no identifica ninguna fila: no llega a consultarse la base.
func TestRepos_IDNoUUIDNoConsultaLaBase(t *testing.T) {
	ctx := context.Background()
	products := postgres.NewProductRepository(nil)
	alerts := postgres.NewStockAlertRepository(nil)
	txs := postgres.NewStockTransactionRepository(nil)

	p, err := products.GetByID(ctx, "p-roja")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = products.GetForUpdate(ctx, "p-roja")
	require.NoError(t, err)
	assert.Nil(t, p)

	assert.ErrorIs(t, products.UpdateStock(ctx, "p-roja", 3), domain.ErrNotFound)

	a, err := alerts.GetByID(ctx, "123")
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.NoError(t, alerts.Resolve(ctx, "123", nil, time.Now()))

	list, total, err := alerts.List(ctx, repository.AlertFilter{ProductID: "p-roja"})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)

	history, err := txs.ListByProductSince(ctx, "p-roja", time.Now())
	require.NoError(t, err)
	assert.Empty(t, history)
}

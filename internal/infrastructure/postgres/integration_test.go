//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// newTestPool levanta un PostgreSQL efímero, aplica las migraciones embebidas y devuelve el pool.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tienda_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mg, err := postgres.NewMigrator(dsn, "", logger.Nop())
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, slug string, stock int) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, title, slug, price, stock) VALUES ($1, $2, $3, 19.90, $4)`,
		id, "Producto "+slug, slug, stock)
	require.NoError(t, err)
	return id
}

func newAdjust(pool *pgxpool.Pool) (*inventory.AdjustStockUseCase, *inventory.SettingsProvider) {
	settings := inventory.NewSettingsProvider(postgres.NewStockSettingsRepository(pool))
	adjust := inventory.NewAdjustStockUseCase(postgres.NewTxRunner(pool), settings, inventory.NewAlertEvaluator(), nil, logger.Nop())
	return adjust, settings
}

func TestIntegration_BloqueoDeFilaSerializaAjustes(t *testing.T) {
	pool := newTestPool(t)
	adjust, _ := newAdjust(pool)
	productID := seedProduct(t, pool, "camiseta", 8)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = adjust.AdjustStock(ctx, inventory.AdjustStockInput{
				ProductID: productID, Quantity: 5, Kind: entity.TransactionKindOUT, Reason: entity.ReasonSALE,
			})
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			require.True(t, errors.Is(err, domain.ErrInsufficientStock), "error inesperado: %v", err)
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	p, err := postgres.NewProductRepository(pool).GetByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)

	alerts, total, err := postgres.NewStockAlertRepository(pool).List(ctx, repository.AlertFilter{ProductID: productID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, entity.AlertLowStock, alerts[0].Kind)
}

func TestIntegration_SettingsSingleton(t *testing.T) {
	pool := newTestPool(t)
	_, settings := newAdjust(pool)
	ctx := context.Background()

	s, err := settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultLowStockThreshold, s.LowStockThreshold)

	def := entity.DefaultStockSettings()
	def.UpdatedAt = time.Now()
	err = postgres.NewStockSettingsRepository(pool).Create(ctx, &def)
	assert.ErrorIs(t, err, domain.ErrMultipleSingletons)
}

func TestIntegration_LibroRechazaFilaInconsistente(t *testing.T) {
	pool := newTestPool(t)
	productID := seedProduct(t, pool, "gorra", 4)

	err := postgres.NewStockTransactionRepository(pool).Create(context.Background(), &entity.StockTransaction{
		ProductID: productID, Kind: entity.TransactionKindIN, Quantity: 2, Reason: entity.ReasonPURCHASE,
		PreviousStock: 4, NewStock: 7, CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIntegration_ResumenYReporte(t *testing.T) {
	pool := newTestPool(t)
	adjust, settings := newAdjust(pool)
	ctx := context.Background()
	seedProduct(t, pool, "camiseta", 20)
	low := seedProduct(t, pool, "gorra", 6)
	seedProduct(t, pool, "bufanda", 0)

	_, err := adjust.AdjustStock(ctx, inventory.AdjustStockInput{
		ProductID: low, Quantity: -1, Kind: entity.TransactionKindADJUSTMENT, Reason: entity.ReasonCORRECTION,
	})
	require.NoError(t, err)

	queries := inventory.NewQueryUseCase(
		postgres.NewProductRepository(pool),
		postgres.NewStockTransactionRepository(pool),
		postgres.NewStockAlertRepository(pool),
		postgres.NewReportRepository(pool),
		settings,
	)
	sum, err := queries.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalProducts)
	assert.Equal(t, 25, sum.TotalStock)
	assert.Equal(t, 2, sum.LowStockCount)
	assert.Equal(t, 1, sum.OutOfStockCount)
	assert.Equal(t, 1, sum.ActiveAlerts)

	page, err := queries.ListTransactions(ctx, repository.TransactionFilter{ProductID: low})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, 5, page.Items[0].NewStock)

	report := inventory.NewStockReportUseCase(postgres.NewReportRepository(pool), settings, nil)
	r, err := report.Build(ctx, inventory.StockReportFilter{Status: inventory.ReportStatusOut})
	require.NoError(t, err)
	require.Equal(t, 1, r.Total)
	assert.Equal(t, "bufanda", r.Rows[0].Slug)
	assert.Equal(t, inventory.NoCategoryLabel, r.Rows[0].Category)
}

func TestIntegration_IDNoUUIDEsNoEncontrado(t *testing.T) {
	pool := newTestPool(t)
	adjust, settings := newAdjust(pool)
	ctx := context.Background()

	_, err := adjust.AdjustStock(ctx, inventory.AdjustStockInput{
		ProductID: "no-es-uuid", Quantity: 1, Kind: entity.TransactionKindIN, Reason: entity.ReasonPURCHASE,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	queries := inventory.NewQueryUseCase(
		postgres.NewProductRepository(pool),
		postgres.NewStockTransactionRepository(pool),
		postgres.NewStockAlertRepository(pool),
		postgres.NewReportRepository(pool),
		settings,
	)
	_, err = queries.StockHistory(ctx, "no-es-uuid", 30)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	page, err := queries.ListTransactions(ctx, repository.TransactionFilter{ProductID: "no-es-uuid"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = inventory.NewAlertUseCase(postgres.NewStockAlertRepository(pool)).Resolve(ctx, "no-es-uuid", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
)

func seedStore(stock int) *memory.Store {
	s := memory.NewStore()
	s.AddCategory(entity.Category{ID: "c1", Name: "Ropa", Slug: "ropa"})
	cat := "c1"
	s.AddProduct(entity.Product{ID: "p1", CategoryID: &cat, Title: "Camiseta", Slug: "camiseta", Price: decimal.NewFromInt(20), Stock: stock})
	return s
}

func TestRun_ErrorDescartaEscrituras(t *testing.T) {
	s := seedStore(8)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(p repository.ProductRepository, tx repository.StockTransactionRepository, a repository.StockAlertRepository) error {
		_, err := p.GetForUpdate(ctx, "p1")
		require.NoError(t, err)
		require.NoError(t, p.UpdateStock(ctx, "p1", 1))
		require.NoError(t, tx.Create(ctx, &entity.StockTransaction{ID: "t1", ProductID: "p1"}))
		require.NoError(t, a.Create(ctx, &entity.StockAlert{ID: "a1", ProductID: "p1", Active: true}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	prod, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 8, prod.Stock, "el rollback no debe tocar el stock")

	_, total, err := s.Transactions().List(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	n, err := s.Alerts().CountActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRun_CommitVisibleYLecturaPropia(t *testing.T) {
	s := seedStore(8)
	ctx := context.Background()

	err := s.Run(ctx, func(p repository.ProductRepository, tx repository.StockTransactionRepository, _ repository.StockAlertRepository) error {
		_, err := p.GetForUpdate(ctx, "p1")
		require.NoError(t, err)
		require.NoError(t, p.UpdateStock(ctx, "p1", 3))
		again, err := p.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 3, again.Stock, "la transacción ve su propia escritura")

		outside, err := s.Products().GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 8, outside.Stock, "fuera de la transacción aún no se ve")
		return nil
	})
	require.NoError(t, err)

	prod, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, prod.Stock)
}

func TestGetForUpdate_SerializaPorProducto(t *testing.T) {
	s := seedStore(8)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []int
	)
	dec := func() {
		defer wg.Done()
		_ = s.Run(ctx, func(p repository.ProductRepository, _ repository.StockTransactionRepository, _ repository.StockAlertRepository) error {
			prod, err := p.GetForUpdate(ctx, "p1")
			if err != nil {
				return err
			}
			time.Sleep(5 * time.Millisecond)
			next := prod.Stock - 5
			if next < 0 {
				return &domain.InsufficientStockError{ProductID: "p1", Available: prod.Stock, Requested: 5}
			}
			mu.Lock()
			results = append(results, next)
			mu.Unlock()
			return p.UpdateStock(ctx, "p1", next)
		})
	}
	wg.Add(2)
	go dec()
	go dec()
	wg.Wait()

	assert.Equal(t, []int{3}, results, "solo uno de los dos descuentos cabe")
	prod, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, 3, prod.Stock)
}

func TestGetForUpdate_RespetaCancelacion(t *testing.T) {
	s := seedStore(8)
	ctx := context.Background()
	locked := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = s.Run(ctx, func(p repository.ProductRepository, _ repository.StockTransactionRepository, _ repository.StockAlertRepository) error {
			_, _ = p.GetForUpdate(ctx, "p1")
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := s.Run(tctx, func(p repository.ProductRepository, _ repository.StockTransactionRepository, _ repository.StockAlertRepository) error {
		_, err := p.GetForUpdate(tctx, "p1")
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestSettings_SegundoCreateFalla(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	def := entity.DefaultStockSettings()

	require.NoError(t, s.Settings().Create(ctx, &def))
	err := s.Settings().Create(ctx, &def)
	assert.ErrorIs(t, err, domain.ErrMultipleSingletons)

	n, err := s.Settings().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReport_TotalesYFiltros(t *testing.T) {
	s := seedStore(5)
	s.AddProduct(entity.Product{ID: "p2", Title: "Gorra", Slug: "gorra", Price: decimal.NewFromInt(10), Stock: 0})
	s.AddProduct(entity.Product{ID: "p3", Title: "Bufanda", Slug: "bufanda", Price: decimal.NewFromInt(15), Stock: -2})
	s.AddProduct(entity.Product{ID: "p4", Title: "Chaqueta", Slug: "chaqueta", Price: decimal.NewFromInt(100), Stock: 40})
	ctx := context.Background()

	totals, err := s.Reports().Totals(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, totals.TotalProducts)
	assert.Equal(t, 43, totals.TotalStock)
	assert.True(t, decimal.NewFromInt(5*20+0-2*15+40*100).Equal(totals.TotalValue))
	assert.Equal(t, 3, totals.LowStockCount, "bajo el umbral incluye agotados y negativos")
	assert.Equal(t, 1, totals.OutOfStockCount)
	assert.Equal(t, 1, totals.NegativeStockCount)

	zero := 0
	items, total, err := s.Reports().StockReport(ctx, repository.StockReportFilter{StockBelow: &zero})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "bufanda", items[0].Slug)

	items, total, err = s.Reports().StockReport(ctx, repository.StockReportFilter{CategorySlug: "ropa"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ropa", items[0].CategoryName)

	items, total, err = s.Reports().StockReport(ctx, repository.StockReportFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 2)
	assert.Equal(t, "camiseta", items[0].Slug, "orden alfabético por título")
	assert.Equal(t, "chaqueta", items[1].Slug)
}

// Package bootstrap arma el almacenamiento y los casos de uso a partir de la configuración.
// Lo comparten el servidor HTTP y la CLI de administración.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/internal/infrastructure/report"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// Stores repositorios y unidad atómica sobre el driver configurado.
type Stores struct {
	TxRunner     inventory.TxRunner
	Products     repository.ProductRepository
	Transactions repository.StockTransactionRepository
	Alerts       repository.StockAlertRepository
	Settings     repository.StockSettingsRepository
	Reports      repository.InventoryReportRepository
	close        func()
}

// Close libera el pool de conexiones (no-op en memoria).
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores abre el almacenamiento. Con postgres aplica migraciones si cfg.Store.AutoMigrate
// y registra las métricas del pool en reg (nil omite el registro).
func OpenStores(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, log *logger.Logger) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return MemoryStores(memory.NewStore()), nil
	case config.StoreDriverPostgres, "":
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Store.Driver)
	}

	if cfg.Store.AutoMigrate {
		if err := Migrate(cfg, log, func(m *postgres.Migrator) error { return m.Up() }); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if reg != nil {
		if err := postgres.RegisterPoolMetrics(reg, pool); err != nil {
			log.Warn().Err(err).Msg("métricas del pool no registradas")
		}
	}
	return &Stores{
		TxRunner:     postgres.NewTxRunner(pool),
		Products:     postgres.NewProductRepository(pool),
		Transactions: postgres.NewStockTransactionRepository(pool),
		Alerts:       postgres.NewStockAlertRepository(pool),
		Settings:     postgres.NewStockSettingsRepository(pool),
		Reports:      postgres.NewReportRepository(pool),
		close:        pool.Close,
	}, nil
}

// MemoryStores expone un almacén en memoria con la misma forma que el de PostgreSQL.
func MemoryStores(s *memory.Store) *Stores {
	return &Stores{
		TxRunner:     s,
		Products:     s.Products(),
		Transactions: s.Transactions(),
		Alerts:       s.Alerts(),
		Settings:     s.Settings(),
		Reports:      s.Reports(),
	}
}

// Migrate abre un migrador sobre la base configurada, ejecuta fn y lo cierra.
func Migrate(cfg *config.Config, log *logger.Logger, fn func(*postgres.Migrator) error) error {
	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), cfg.Store.MigrationsPath, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()
	return fn(m)
}

// UseCases casos de uso del inventario listos para los adaptadores (HTTP, CLI).
type UseCases struct {
	Settings *inventory.SettingsProvider
	Adjust   *inventory.AdjustStockUseCase
	Bulk     *inventory.BulkAdjustUseCase
	Alerts   *inventory.AlertUseCase
	Queries  *inventory.QueryUseCase
	Report   *inventory.StockReportUseCase
	Orders   *inventory.OrderCompletionUseCase
}

// NewUseCases construye los casos de uso. notifier puede ser nil.
func NewUseCases(st *Stores, notifier inventory.AlertNotifier, log *logger.Logger) *UseCases {
	settings := inventory.NewSettingsProvider(st.Settings)
	adjust := inventory.NewAdjustStockUseCase(st.TxRunner, settings, inventory.NewAlertEvaluator(), notifier, log)
	return &UseCases{
		Settings: settings,
		Adjust:   adjust,
		Bulk:     inventory.NewBulkAdjustUseCase(adjust, st.Products, log),
		Alerts:   inventory.NewAlertUseCase(st.Alerts),
		Queries:  inventory.NewQueryUseCase(st.Products, st.Transactions, st.Alerts, st.Reports, settings),
		Report:   inventory.NewStockReportUseCase(st.Reports, settings, report.Renderers()),
		Orders:   inventory.NewOrderCompletionUseCase(adjust, settings, log),
	}
}

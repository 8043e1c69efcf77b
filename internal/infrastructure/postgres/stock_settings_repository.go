package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.StockSettingsRepository = (*StockSettingsRepo)(nil)

// StockSettingsRepo singleton de configuración. La fila tiene id = 1 (CHECK en la tabla).
type StockSettingsRepo struct {
	q Querier
}

// NewStockSettingsRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockSettingsRepository(q Querier) *StockSettingsRepo {
	return &StockSettingsRepo{q: q}
}

// Get devuelve la configuración o nil si aún no existe.
func (r *StockSettingsRepo) Get(ctx context.Context) (*entity.StockSettings, error) {
	var s entity.StockSettings
	err := r.q.QueryRow(ctx, `SELECT low_stock_threshold, allow_negative_stock, auto_adjust_on_sale, updated_at
		FROM stock_settings WHERE id = 1`).Scan(&s.LowStockThreshold, &s.AllowNegativeStock, &s.AutoAdjustOnSale, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock settings: %w", err)
	}
	return &s, nil
}

// Create inserta la fila única; si ya existe devuelve domain.ErrMultipleSingletons.
func (r *StockSettingsRepo) Create(ctx context.Context, s *entity.StockSettings) error {
	_, err := r.q.Exec(ctx, `INSERT INTO stock_settings (id, low_stock_threshold, allow_negative_stock, auto_adjust_on_sale, updated_at)
		VALUES (1, $1, $2, $3, $4)`, s.LowStockThreshold, s.AllowNegativeStock, s.AutoAdjustOnSale, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrMultipleSingletons
		}
		return fmt.Errorf("create stock settings: %w", err)
	}
	return nil
}

// Update reemplaza los valores de la fila única.
func (r *StockSettingsRepo) Update(ctx context.Context, s *entity.StockSettings) error {
	cmd, err := r.q.Exec(ctx, `UPDATE stock_settings SET low_stock_threshold = $1, allow_negative_stock = $2,
		auto_adjust_on_sale = $3, updated_at = $4 WHERE id = 1`,
		s.LowStockThreshold, s.AllowNegativeStock, s.AutoAdjustOnSale, s.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("low_stock_threshold", "no puede ser negativo")
		}
		return fmt.Errorf("update stock settings: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count número de filas de configuración.
func (r *StockSettingsRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_settings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock settings: %w", err)
	}
	return n, nil
}

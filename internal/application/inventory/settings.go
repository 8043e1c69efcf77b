package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// SettingsProvider expone el singleton de configuración de stock.
// Las lecturas no toman bloqueos: un cambio concurrente aplica al siguiente ajuste.
type SettingsProvider struct {
	repo repository.StockSettingsRepository
}

// NewSettingsProvider construye el proveedor.
func NewSettingsProvider(repo repository.StockSettingsRepository) *SettingsProvider {
	return &SettingsProvider{repo: repo}
}

// SettingsPatch campos a modificar; nil deja el valor actual.
type SettingsPatch struct {
	LowStockThreshold  *int
	AllowNegativeStock *bool
	AutoAdjustOnSale   *bool
}

// Get devuelve la configuración, creándola con valores por defecto si aún no existe.
func (p *SettingsProvider) Get(ctx context.Context) (*entity.StockSettings, error) {
	s, err := p.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}
	def := entity.DefaultStockSettings()
	def.UpdatedAt = time.Now()
	if err := p.repo.Create(ctx, &def); err != nil {
		if !errors.Is(err, domain.ErrMultipleSingletons) {
			return nil, err
		}
		// Otra petición la creó primero: usar esa.
		s, err = p.repo.Get(ctx)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, domain.ErrNotFound
		}
		return s, nil
	}
	return &def, nil
}

// Update aplica patch sobre el registro existente.
func (p *SettingsProvider) Update(ctx context.Context, patch SettingsPatch) (*entity.StockSettings, error) {
	n, err := p.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 1 {
		return nil, domain.ErrMultipleSingletons
	}
	if patch.LowStockThreshold != nil && *patch.LowStockThreshold < 0 {
		return nil, domain.Invalid("low_stock_threshold", "no puede ser negativo")
	}
	current, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}
	next := *current
	if patch.LowStockThreshold != nil {
		next.LowStockThreshold = *patch.LowStockThreshold
	}
	if patch.AllowNegativeStock != nil {
		next.AllowNegativeStock = *patch.AllowNegativeStock
	}
	if patch.AutoAdjustOnSale != nil {
		next.AutoAdjustOnSale = *patch.AutoAdjustOnSale
	}
	next.UpdatedAt = time.Now()
	if err := p.repo.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

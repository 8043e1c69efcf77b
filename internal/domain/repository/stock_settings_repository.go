package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// StockSettingsRepository puerto del singleton de configuración.
type StockSettingsRepository interface {
	// Get devuelve nil, nil si todavía no existe el registro.
	Get(ctx context.Context) (*entity.StockSettings, error)
	// Create inserta el registro; si ya existe uno devuelve domain.ErrMultipleSingletons.
	Create(ctx context.Context, s *entity.StockSettings) error
	Update(ctx context.Context, s *entity.StockSettings) error
	Count(ctx context.Context) (int, error)
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El inventario solo lee y escribe Stock
// (y lee Price para valorizar); el resto pertenece al módulo de catálogo.
type Product struct {
	ID         string
	CategoryID *string
	Title      string
	Slug       string          // clave externa estable (carga masiva por CSV)
	Price      decimal.Decimal // precio de venta
	Stock      int             // puede ser negativo si la configuración lo permite
	Available  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

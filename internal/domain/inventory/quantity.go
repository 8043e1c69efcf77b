package inventory

import (
	"math"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// Cantidades y niveles de stock caben en una columna INTEGER.
const (
	MaxQuantity = math.MaxInt32
	MaxStock    = math.MaxInt32
	MinStock    = math.MinInt32
)

// QuantityInRange indica si |qty| <= MaxQuantity. Fuera de ese rango el signo no puede normalizarse.
func QuantityInRange(qty int) bool { return qty >= -MaxQuantity && qty <= MaxQuantity }

// StockInRange indica si el nivel resultante es representable.
func StockInRange(stock int) bool { return stock >= MinStock && stock <= MaxStock }

// NormalizeQuantity aplica el signo que exige el tipo de transacción:
// OUT/SALE siempre <= 0, IN/RETURN siempre >= 0, ADJUSTMENT conserva el signo.
func NormalizeQuantity(kind string, qty int) int {
	switch kind {
	case entity.TransactionKindOUT, entity.TransactionKindSALE:
		return -abs(qty)
	case entity.TransactionKindIN, entity.TransactionKindRETURN:
		return abs(qty)
	}
	return qty
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

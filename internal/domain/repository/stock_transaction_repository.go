package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// TransactionFilter filtros del listado de transacciones. Campos vacíos/nil no filtran.
type TransactionFilter struct {
	ProductID string
	Kind      string
	Reason    string
	From      *time.Time // inclusive
	To        *time.Time // inclusive
	Limit     int
	Offset    int
}

// StockTransactionRepository puerto del libro de stock (solo inserción).
type StockTransactionRepository interface {
	Create(ctx context.Context, tx *entity.StockTransaction) error
	// List devuelve la página pedida (más reciente primero) y el total que cumple el filtro.
	List(ctx context.Context, f TransactionFilter) ([]*entity.StockTransaction, int, error)
	ListByProductSince(ctx context.Context, productID string, since time.Time) ([]*entity.StockTransaction, error)
}

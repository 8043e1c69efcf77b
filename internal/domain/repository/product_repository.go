package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// ProductRepository define el puerto del inventario sobre la tabla de productos (DIP).
// Solo Stock es escribible desde aquí; el resto del producto pertenece al catálogo.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	// GetForUpdate obtiene el producto y bloquea su fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) error
	// ListStockBelow productos con stock < threshold, ordenados por stock ascendente.
	ListStockBelow(ctx context.Context, threshold int) ([]*entity.Product, error)
	// ListStockEqual productos con stock exactamente igual a level.
	ListStockEqual(ctx context.Context, level int) ([]*entity.Product, error)
}

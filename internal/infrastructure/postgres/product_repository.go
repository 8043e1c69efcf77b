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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
// El catálogo es dueño de la tabla; aquí solo se lee el producto y se escribe stock.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, category_id, title, slug, price, stock, available, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.CategoryID, &p.Title, &p.Slug, &p.Price, &p.Stock, &p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySlug obtiene un producto por slug.
func (r *ProductRepo) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	p, err := r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return p, nil
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT ... FOR UPDATE).
// Debe usarse dentro de una transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// UpdateStock escribe el nivel de stock.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListStockBelow productos con stock < threshold.
func (r *ProductRepo) ListStockBelow(ctx context.Context, threshold int) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE stock < $1 ORDER BY stock ASC, title ASC`, threshold)
}

// ListStockEqual productos con stock = level.
func (r *ProductRepo) ListStockEqual(ctx context.Context, level int) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE stock = $1 ORDER BY title ASC`, level)
}

func (r *ProductRepo) list(ctx context.Context, query string, arg any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

package memory

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// Repositorios ligados a una transacción: leen el estado confirmado más lo escrito en la
// propia transacción y difieren toda escritura hasta el commit.

type txProductRepo struct{ t *memTx }

func (r *txProductRepo) read(id string) *entity.Product {
	r.t.s.mu.RLock()
	p, ok := r.t.s.products[id]
	var c *entity.Product
	if ok {
		c = copyProduct(p)
	}
	r.t.s.mu.RUnlock()
	if c == nil {
		return nil
	}
	if stock, ok := r.t.stock[id]; ok {
		c.Stock = stock
	}
	return c
}

func (r *txProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.read(id), nil
}

func (r *txProductRepo) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	p, err := r.t.s.Products().GetBySlug(ctx, slug)
	if err != nil || p == nil {
		return p, err
	}
	return r.read(p.ID), nil
}

func (r *txProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if err := r.t.lock(ctx, id); err != nil {
		return nil, err
	}
	return r.read(id), nil
}

func (r *txProductRepo) UpdateStock(_ context.Context, id string, stock int) error {
	if r.read(id) == nil {
		return domain.ErrNotFound
	}
	r.t.stock[id] = stock
	now := time.Now()
	r.t.stage(func(s *Store) {
		if p, ok := s.products[id]; ok {
			p.Stock = stock
			p.UpdatedAt = now
		}
	})
	return nil
}

func (r *txProductRepo) ListStockBelow(ctx context.Context, threshold int) ([]*entity.Product, error) {
	return r.t.s.Products().ListStockBelow(ctx, threshold)
}

func (r *txProductRepo) ListStockEqual(ctx context.Context, level int) ([]*entity.Product, error) {
	return r.t.s.Products().ListStockEqual(ctx, level)
}

type txTransactionRepo struct{ t *memTx }

func (r *txTransactionRepo) Create(_ context.Context, st *entity.StockTransaction) error {
	c := copyTransaction(st)
	r.t.stage(func(s *Store) { s.transactions = append(s.transactions, c) })
	return nil
}

func (r *txTransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.StockTransaction, int, error) {
	return r.t.s.Transactions().List(ctx, f)
}

func (r *txTransactionRepo) ListByProductSince(ctx context.Context, productID string, since time.Time) ([]*entity.StockTransaction, error) {
	return r.t.s.Transactions().ListByProductSince(ctx, productID, since)
}

type txAlertRepo struct{ t *memTx }

func (r *txAlertRepo) Create(_ context.Context, a *entity.StockAlert) error {
	c := copyAlert(a)
	r.t.stage(func(s *Store) { s.alerts = append(s.alerts, c) })
	return nil
}

func (r *txAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	return r.t.s.Alerts().GetByID(ctx, id)
}

// DeactivateActiveByProduct cuenta sobre el estado confirmado; la desactivación se aplica al commit.
func (r *txAlertRepo) DeactivateActiveByProduct(_ context.Context, productID string) (int, error) {
	r.t.s.mu.RLock()
	n := 0
	for _, a := range r.t.s.alerts {
		if a.ProductID == productID && a.Active {
			n++
		}
	}
	r.t.s.mu.RUnlock()
	r.t.stage(func(s *Store) { s.deactivate(productID) })
	return n, nil
}

func (r *txAlertRepo) Resolve(_ context.Context, id string, resolvedBy *string, at time.Time) error {
	r.t.stage(func(s *Store) {
		if a := s.findAlert(id); a != nil && a.Active {
			a.Active = false
			a.ResolvedAt = &at
			a.ResolvedBy = resolvedBy
		}
	})
	return nil
}

func (r *txAlertRepo) List(ctx context.Context, f repository.AlertFilter) ([]*entity.StockAlert, int, error) {
	return r.t.s.Alerts().List(ctx, f)
}

func (r *txAlertRepo) CountActive(ctx context.Context) (int, error) {
	return r.t.s.Alerts().CountActive(ctx)
}

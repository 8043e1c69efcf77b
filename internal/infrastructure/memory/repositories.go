package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository          = (*ProductRepo)(nil)
	_ repository.StockTransactionRepository = (*TransactionRepo)(nil)
	_ repository.StockAlertRepository       = (*AlertRepo)(nil)
	_ repository.StockSettingsRepository    = (*SettingsRepo)(nil)
	_ repository.InventoryReportRepository  = (*ReportRepo)(nil)
)

// ProductRepo productos fuera de transacción. GetForUpdate no bloquea: el bloqueo solo
// tiene sentido dentro de Store.Run.
type ProductRepo struct{ s *Store }

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return copyProduct(p), nil
}

func (r *ProductRepo) GetBySlug(_ context.Context, slug string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.Slug == slug {
			return copyProduct(p), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, stock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}

func (r *ProductRepo) ListStockBelow(_ context.Context, threshold int) ([]*entity.Product, error) {
	return r.filter(func(p *entity.Product) bool { return p.Stock < threshold }), nil
}

func (r *ProductRepo) ListStockEqual(_ context.Context, level int) ([]*entity.Product, error) {
	return r.filter(func(p *entity.Product) bool { return p.Stock == level }), nil
}

func (r *ProductRepo) filter(keep func(*entity.Product) bool) []*entity.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Product, 0)
	for _, p := range r.s.products {
		if keep(p) {
			list = append(list, copyProduct(p))
		}
	}
	sortProducts(list)
	return list
}

// TransactionRepo libro de stock.
type TransactionRepo struct{ s *Store }

func (r *TransactionRepo) Create(_ context.Context, t *entity.StockTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transactions = append(r.s.transactions, copyTransaction(t))
	return nil
}

func (r *TransactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.StockTransaction, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var matched []*entity.StockTransaction
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		t := r.s.transactions[i]
		if f.ProductID != "" && t.ProductID != f.ProductID {
			continue
		}
		if f.Kind != "" && t.Kind != f.Kind {
			continue
		}
		if f.Reason != "" && t.Reason != f.Reason {
			continue
		}
		if f.From != nil && t.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && t.CreatedAt.After(*f.To) {
			continue
		}
		matched = append(matched, t)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	page := paginate(len(matched), f.Limit, f.Offset)
	out := make([]*entity.StockTransaction, 0, page.size())
	for _, t := range matched[page.from:page.to] {
		out = append(out, copyTransaction(t))
	}
	return out, len(matched), nil
}

func (r *TransactionRepo) ListByProductSince(_ context.Context, productID string, since time.Time) ([]*entity.StockTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockTransaction, 0)
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		t := r.s.transactions[i]
		if t.ProductID == productID && !t.CreatedAt.Before(since) {
			out = append(out, copyTransaction(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AlertRepo alertas de stock.
type AlertRepo struct{ s *Store }

func (r *AlertRepo) Create(_ context.Context, a *entity.StockAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.alerts = append(r.s.alerts, copyAlert(a))
	return nil
}

func (r *AlertRepo) GetByID(_ context.Context, id string) (*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if a := r.s.findAlert(id); a != nil {
		return copyAlert(a), nil
	}
	return nil, nil
}

func (r *AlertRepo) DeactivateActiveByProduct(_ context.Context, productID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.deactivate(productID), nil
}

func (r *AlertRepo) Resolve(_ context.Context, id string, resolvedBy *string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := r.s.findAlert(id)
	if a == nil {
		return domain.ErrNotFound
	}
	if !a.Active {
		return nil
	}
	a.Active = false
	a.ResolvedAt = &at
	a.ResolvedBy = resolvedBy
	return nil
}

func (r *AlertRepo) List(_ context.Context, f repository.AlertFilter) ([]*entity.StockAlert, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var matched []*entity.StockAlert
	for i := len(r.s.alerts) - 1; i >= 0; i-- {
		a := r.s.alerts[i]
		if f.Active != nil && a.Active != *f.Active {
			continue
		}
		if f.Kind != "" && a.Kind != f.Kind {
			continue
		}
		if f.ProductID != "" && a.ProductID != f.ProductID {
			continue
		}
		matched = append(matched, a)
	}
	page := paginate(len(matched), f.Limit, f.Offset)
	out := make([]*entity.StockAlert, 0, page.size())
	for _, a := range matched[page.from:page.to] {
		out = append(out, copyAlert(a))
	}
	return out, len(matched), nil
}

func (r *AlertRepo) CountActive(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, a := range r.s.alerts {
		if a.Active {
			n++
		}
	}
	return n, nil
}

// findAlert requiere s.mu tomado.
func (s *Store) findAlert(id string) *entity.StockAlert {
	for _, a := range s.alerts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// deactivate requiere s.mu tomado en escritura.
func (s *Store) deactivate(productID string) int {
	n := 0
	for _, a := range s.alerts {
		if a.ProductID == productID && a.Active {
			a.Active = false
			n++
		}
	}
	return n
}

// SettingsRepo singleton de configuración.
type SettingsRepo struct{ s *Store }

func (r *SettingsRepo) Get(_ context.Context) (*entity.StockSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if len(r.s.settings) == 0 {
		return nil, nil
	}
	c := *r.s.settings[0]
	return &c, nil
}

func (r *SettingsRepo) Create(_ context.Context, st *entity.StockSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.settings) > 0 {
		return domain.ErrMultipleSingletons
	}
	c := *st
	r.s.settings = append(r.s.settings, &c)
	return nil
}

func (r *SettingsRepo) Update(_ context.Context, st *entity.StockSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.settings) == 0 {
		return domain.ErrNotFound
	}
	c := *st
	r.s.settings[0] = &c
	return nil
}

func (r *SettingsRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.settings), nil
}

// ReportRepo agregados del inventario.
type ReportRepo struct{ s *Store }

func (r *ReportRepo) Totals(_ context.Context, lowStockThreshold int) (*repository.InventoryTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t := &repository.InventoryTotals{TotalValue: decimal.Zero}
	for _, p := range r.s.products {
		t.TotalProducts++
		t.TotalStock += p.Stock
		t.TotalValue = t.TotalValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
		if p.Stock < lowStockThreshold {
			t.LowStockCount++
		}
		if p.Stock == 0 {
			t.OutOfStockCount++
		}
		if p.Stock < 0 {
			t.NegativeStockCount++
		}
	}
	return t, nil
}

func (r *ReportRepo) StockReport(_ context.Context, f repository.StockReportFilter) ([]repository.StockReportItem, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := []repository.StockReportItem{}
	for _, p := range r.s.products {
		var cat *entity.Category
		if p.CategoryID != nil {
			cat = r.s.categories[*p.CategoryID]
		}
		if f.CategorySlug != "" && (cat == nil || cat.Slug != f.CategorySlug) {
			continue
		}
		if f.StockBelow != nil && p.Stock >= *f.StockBelow {
			continue
		}
		if f.StockEqual != nil && p.Stock != *f.StockEqual {
			continue
		}
		item := repository.StockReportItem{
			ProductID: p.ID,
			Title:     p.Title,
			Slug:      p.Slug,
			Stock:     p.Stock,
			Price:     p.Price,
		}
		if cat != nil {
			item.CategoryName = cat.Name
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Title != items[j].Title {
			return items[i].Title < items[j].Title
		}
		return items[i].ProductID < items[j].ProductID
	})
	page := paginate(len(items), f.Limit, f.Offset)
	return items[page.from:page.to], len(items), nil
}

type window struct{ from, to int }

func (w window) size() int { return w.to - w.from }

// paginate acota [offset, offset+limit) a n elementos. limit <= 0 no limita.
func paginate(n, limit, offset int) window {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return window{from: offset, to: end}
}

package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.InventoryReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas sobre productos y categorías.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// Totals calcula los agregados del tablero con el umbral dado.
func (r *ReportRepo) Totals(ctx context.Context, lowStockThreshold int) (*repository.InventoryTotals, error) {
	var (
		t     repository.InventoryTotals
		value decimal.NullDecimal
	)
	err := r.q.QueryRow(ctx, `
		SELECT count(*),
		       COALESCE(sum(stock), 0),
		       sum(stock * price),
		       count(*) FILTER (WHERE stock < $1),
		       count(*) FILTER (WHERE stock = 0),
		       count(*) FILTER (WHERE stock < 0)
		FROM products`, lowStockThreshold,
	).Scan(&t.TotalProducts, &t.TotalStock, &value, &t.LowStockCount, &t.OutOfStockCount, &t.NegativeStockCount)
	if err != nil {
		return nil, fmt.Errorf("inventory totals: %w", err)
	}
	t.TotalValue = decimal.Zero
	if value.Valid {
		t.TotalValue = value.Decimal
	}
	return &t, nil
}

// StockReport filas del reporte (stock ascendente, luego título) y el total filtrado.
func (r *ReportRepo) StockReport(ctx context.Context, f repository.StockReportFilter) ([]repository.StockReportItem, int, error) {
	from := ` FROM products p LEFT JOIN categories c ON c.id = p.category_id WHERE 1=1`
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		from += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.CategorySlug != "" {
		add("c.slug = $%d", f.CategorySlug)
	}
	if f.StockBelow != nil {
		add("p.stock < $%d", *f.StockBelow)
	}
	if f.StockEqual != nil {
		add("p.stock = $%d", *f.StockEqual)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock report: %w", err)
	}

	query := `SELECT p.id, p.title, p.slug, COALESCE(c.name, ''), p.stock, p.price` + from + ` ORDER BY p.title ASC, p.id ASC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	} else if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("stock report: %w", err)
	}
	defer rows.Close()
	items := make([]repository.StockReportItem, 0)
	for rows.Next() {
		var it repository.StockReportItem
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Slug, &it.CategoryName, &it.Stock, &it.Price); err != nil {
			return nil, 0, fmt.Errorf("scan stock report: %w", err)
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

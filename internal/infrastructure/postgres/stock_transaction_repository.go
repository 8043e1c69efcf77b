package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo libro de stock sobre PostgreSQL (usable con pool o tx). Solo inserción.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

const transactionColumns = `id, product_id, transaction_type, quantity, reason, notes, previous_stock, new_stock, user_id, order_item_id, created_at`

// Create persiste una transacción de stock.
func (r *StockTransactionRepo) Create(ctx context.Context, t *entity.StockTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `INSERT INTO stock_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProductID, t.Kind, t.Quantity, t.Reason, t.Notes,
		t.PreviousStock, t.NewStock, t.UserID, t.OrderItemID, t.CreatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("quantity", "no cuadra con previous_stock/new_stock o con el tipo")
		}
		return fmt.Errorf("create stock transaction: %w", err)
	}
	return nil
}

// List lista transacciones con filtros, más reciente primero, y el total filtrado.
func (r *StockTransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.StockTransaction, int, error) {
	if f.ProductID != "" && !isUUID(f.ProductID) {
		return []*entity.StockTransaction{}, 0, nil
	}
	where := ` WHERE 1=1`
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Kind != "" {
		add("transaction_type = $%d", f.Kind)
	}
	if f.Reason != "" {
		add("reason = $%d", f.Reason)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + ` FROM stock_transactions` + where + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	list, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByProductSince transacciones de un producto desde since (inclusive), más reciente primero.
func (r *StockTransactionRepo) ListByProductSince(ctx context.Context, productID string, since time.Time) ([]*entity.StockTransaction, error) {
	if !isUUID(productID) {
		return []*entity.StockTransaction{}, nil
	}
	return r.query(ctx, `SELECT `+transactionColumns+` FROM stock_transactions
		WHERE product_id = $1 AND created_at >= $2 ORDER BY created_at DESC, id`, productID, since)
}

func (r *StockTransactionRepo) query(ctx context.Context, query string, args ...any) ([]*entity.StockTransaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockTransaction, 0)
	for rows.Next() {
		var t entity.StockTransaction
		if err := rows.Scan(&t.ID, &t.ProductID, &t.Kind, &t.Quantity, &t.Reason, &t.Notes,
			&t.PreviousStock, &t.NewStock, &t.UserID, &t.OrderItemID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

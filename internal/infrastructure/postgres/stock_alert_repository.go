package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo alertas de stock sobre PostgreSQL (usable con pool o tx).
// El índice único parcial stock_alerts_one_active garantiza una sola alerta activa por producto.
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

const alertColumns = `id, product_id, alert_type, message, is_active, threshold, created_at, resolved_at, resolved_by`

func scanAlert(row pgx.Row) (*entity.StockAlert, error) {
	var a entity.StockAlert
	if err := row.Scan(&a.ID, &a.ProductID, &a.Kind, &a.Message, &a.Active, &a.Threshold,
		&a.CreatedAt, &a.ResolvedAt, &a.ResolvedBy); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create persiste una alerta.
func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `INSERT INTO stock_alerts (`+alertColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.ProductID, a.Kind, a.Message, a.Active, a.Threshold, a.CreatedAt, a.ResolvedAt, a.ResolvedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ya existe una alerta activa para el producto %s: %w", a.ProductID, err)
		}
		return fmt.Errorf("create stock alert: %w", err)
	}
	return nil
}

// GetByID obtiene una alerta por ID.
func (r *StockAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	if !isUUID(id) {
		return nil, nil
	}
	a, err := scanAlert(r.q.QueryRow(ctx, `SELECT `+alertColumns+` FROM stock_alerts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock alert: %w", err)
	}
	return a, nil
}

// DeactivateActiveByProduct desactiva las alertas activas del producto.
func (r *StockAlertRepo) DeactivateActiveByProduct(ctx context.Context, productID string) (int, error) {
	if !isUUID(productID) {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `UPDATE stock_alerts SET is_active = false WHERE product_id = $1 AND is_active`, productID)
	if err != nil {
		return 0, fmt.Errorf("deactivate stock alerts: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

// Resolve marca la alerta resuelta. Una alerta ya inactiva no se modifica.
func (r *StockAlertRepo) Resolve(ctx context.Context, id string, resolvedBy *string, at time.Time) error {
	if !isUUID(id) {
		return nil
	}
	_, err := r.q.Exec(ctx, `UPDATE stock_alerts SET is_active = false, resolved_at = $2, resolved_by = $3
		WHERE id = $1 AND is_active`, id, at, resolvedBy)
	if err != nil {
		return fmt.Errorf("resolve stock alert: %w", err)
	}
	return nil
}

// List lista alertas filtradas, más reciente primero, y el total filtrado.
func (r *StockAlertRepo) List(ctx context.Context, f repository.AlertFilter) ([]*entity.StockAlert, int, error) {
	if f.ProductID != "" && !isUUID(f.ProductID) {
		return []*entity.StockAlert{}, 0, nil
	}
	where := ` WHERE 1=1`
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.Active != nil {
		add("is_active = $%d", *f.Active)
	}
	if f.Kind != "" {
		add("alert_type = $%d", f.Kind)
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_alerts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock alerts: %w", err)
	}

	query := `SELECT ` + alertColumns + ` FROM stock_alerts` + where + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock alerts: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockAlert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock alert: %w", err)
		}
		list = append(list, a)
	}
	return list, total, rows.Err()
}

// CountActive número de alertas activas.
func (r *StockAlertRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_alerts WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active stock alerts: %w", err)
	}
	return n, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
)

var _ repository.StockPeriodRepository = (*StockPeriodRepo)(nil)

const stockColumns = `product_id, year_month, previous_balance, inputs, outputs, current_balance, updated_at`

// StockPeriodRepo implementación de StockPeriodRepository sobre PostgreSQL (usable con pool o tx).
type StockPeriodRepo struct {
	q Querier
}

// NewStockPeriodRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockPeriodRepository(q Querier) *StockPeriodRepo {
	return &StockPeriodRepo{q: q}
}

// Get obtiene el saldo de (producto, periodo); nil si no existe.
func (r *StockPeriodRepo) Get(ctx context.Context, productID int64, period inventory.Period) (*entity.StockPeriod, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_periods WHERE product_id = $1 AND year_month = $2`
	s, err := scanStockPeriod(r.q.QueryRow(ctx, query, productID, period.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock period: %w", err)
	}
	return s, nil
}

// LatestBefore obtiene el registro más reciente con floor <= year_month < before.
func (r *StockPeriodRepo) LatestBefore(ctx context.Context, productID int64, before, floor inventory.Period) (*entity.StockPeriod, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_periods
		WHERE product_id = $1 AND year_month < $2 AND year_month >= $3
		ORDER BY year_month DESC
		LIMIT 1`
	s, err := scanStockPeriod(r.q.QueryRow(ctx, query, productID, before.String(), floor.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest stock period: %w", err)
	}
	return s, nil
}

// Save inserta o reemplaza el registro (upsert por producto y periodo).
func (r *StockPeriodRepo) Save(ctx context.Context, s *entity.StockPeriod) error {
	query := `
		INSERT INTO stock_periods (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id, year_month)
		DO UPDATE SET previous_balance = EXCLUDED.previous_balance,
			inputs = EXCLUDED.inputs,
			outputs = EXCLUDED.outputs,
			current_balance = EXCLUDED.current_balance,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		s.ProductID, s.Period.String(), s.PreviousBalance, s.Inputs, s.Outputs, s.CurrentBalance, s.UpdatedAt,
	)
	if err != nil {
		return mapError("save stock period", err)
	}
	return nil
}

// ListByProduct lista la cadena del producto ordenada por periodo.
func (r *StockPeriodRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.StockPeriod, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_periods WHERE product_id = $1 ORDER BY year_month`
	return r.list(ctx, "list stock by product", query, productID)
}

// ListByPeriod lista los saldos del periodo ordenados por producto.
func (r *StockPeriodRepo) ListByPeriod(ctx context.Context, period inventory.Period) ([]*entity.StockPeriod, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_periods WHERE year_month = $1 ORDER BY product_id`
	return r.list(ctx, "list stock by period", query, period.String())
}

// ListAll lista todos los saldos ordenados por periodo y producto.
func (r *StockPeriodRepo) ListAll(ctx context.Context) ([]*entity.StockPeriod, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_periods ORDER BY year_month, product_id`
	return r.list(ctx, "list stock", query)
}

// LockProduct toma un advisory lock de transacción por producto: serializa réplicas del servicio.
// Fuera de una tx el lock se libera al terminar la sentencia.
func (r *StockPeriodRepo) LockProduct(ctx context.Context, productID int64) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, productID); err != nil {
		return fmt.Errorf("lock product %d: %w", productID, err)
	}
	return nil
}

func (r *StockPeriodRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockPeriod, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]*entity.StockPeriod, 0)
	for rows.Next() {
		s, err := scanStockPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanStockPeriod(row pgx.Row) (*entity.StockPeriod, error) {
	var s entity.StockPeriod
	var yearMonth string
	if err := row.Scan(&s.ProductID, &yearMonth, &s.PreviousBalance, &s.Inputs, &s.Outputs, &s.CurrentBalance, &s.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := inventory.ParsePeriod(yearMonth)
	if err != nil {
		return nil, err
	}
	s.Period = p
	return &s, nil
}

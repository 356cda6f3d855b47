package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
)

var _ repository.StockPeriodRepository = (*StockPeriodRepo)(nil)

const stockColumns = `product_id, year_month, previous_balance, inputs, outputs, current_balance, updated_at`

// StockPeriodRepo saldos mensuales sobre SQLite.
type StockPeriodRepo struct {
	q querier
}

func (r *StockPeriodRepo) Get(ctx context.Context, productID int64, period inventory.Period) (*entity.StockPeriod, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+stockColumns+` FROM stock_periods WHERE product_id = ? AND year_month = ?`,
		productID, period.String())
	s, err := scanStockPeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stock period: %w", err)
	}
	return s, nil
}

func (r *StockPeriodRepo) LatestBefore(ctx context.Context, productID int64, before, floor inventory.Period) (*entity.StockPeriod, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+stockColumns+` FROM stock_periods
		 WHERE product_id = ? AND year_month < ? AND year_month >= ?
		 ORDER BY year_month DESC LIMIT 1`,
		productID, before.String(), floor.String())
	s, err := scanStockPeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest stock period: %w", err)
	}
	return s, nil
}

func (r *StockPeriodRepo) Save(ctx context.Context, s *entity.StockPeriod) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO stock_periods (`+stockColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (product_id, year_month) DO UPDATE SET
		   previous_balance = excluded.previous_balance,
		   inputs = excluded.inputs,
		   outputs = excluded.outputs,
		   current_balance = excluded.current_balance,
		   updated_at = excluded.updated_at`,
		s.ProductID, s.Period.String(), s.PreviousBalance, s.Inputs, s.Outputs, s.CurrentBalance, toMillis(s.UpdatedAt),
	)
	if err != nil {
		return mapError("save stock period", err)
	}
	return nil
}

func (r *StockPeriodRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.StockPeriod, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock_periods WHERE product_id = ? ORDER BY year_month`, productID)
}

func (r *StockPeriodRepo) ListByPeriod(ctx context.Context, period inventory.Period) ([]*entity.StockPeriod, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock_periods WHERE year_month = ? ORDER BY product_id`, period.String())
}

func (r *StockPeriodRepo) ListAll(ctx context.Context) ([]*entity.StockPeriod, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock_periods ORDER BY year_month, product_id`)
}

// LockProduct no hace nada: la única conexión ya serializa las transacciones.
func (r *StockPeriodRepo) LockProduct(context.Context, int64) error { return nil }

func (r *StockPeriodRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockPeriod, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock periods: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.StockPeriod, 0)
	for rows.Next() {
		s, err := scanStockPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock period: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stock periods: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStockPeriod(row rowScanner) (*entity.StockPeriod, error) {
	var (
		s         entity.StockPeriod
		yearMonth string
		updatedAt int64
	)
	if err := row.Scan(&s.ProductID, &yearMonth, &s.PreviousBalance, &s.Inputs, &s.Outputs, &s.CurrentBalance, &updatedAt); err != nil {
		return nil, err
	}
	p, err := inventory.ParsePeriod(yearMonth)
	if err != nil {
		return nil, err
	}
	s.Period = p
	s.UpdatedAt = fromMillis(updatedAt)
	return &s, nil
}

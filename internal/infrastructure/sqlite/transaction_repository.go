package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const (
	transactionColumns = `id, date, type, product_id, quantity, price, created_at`
	dateLayout         = "2006-01-02"
)

// TransactionRepo transacciones sobre SQLite. Fecha como TEXT YYYY-MM-DD (ordenable) y precio como TEXT decimal.
type TransactionRepo struct {
	q querier
}

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO transactions (date, type, product_id, quantity, price, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.Date.Format(dateLayout), t.Type, t.ProductID, t.Quantity, t.Price.String(), toMillis(t.CreatedAt),
	)
	if err != nil {
		return mapError("create transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	t.ID = id
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return mapError("delete transaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: transacción %d", domain.ErrNotFound, id)
	}
	return nil
}

func (r *TransactionRepo) ListAll(ctx context.Context) ([]*entity.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY date, id`)
}

func (r *TransactionRepo) ListByDates(ctx context.Context, from, to time.Time) ([]*entity.Transaction, error) {
	return r.list(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE date BETWEEN ? AND ? ORDER BY date, id`,
		from.Format(dateLayout), to.Format(dateLayout))
}

func (r *TransactionRepo) ListByDatesAndProduct(ctx context.Context, from, to time.Time, productID int64) ([]*entity.Transaction, error) {
	return r.list(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE product_id = ? AND date BETWEEN ? AND ? ORDER BY date, id`,
		productID, from.Format(dateLayout), to.Format(dateLayout))
}

func (r *TransactionRepo) ListByType(ctx context.Context, txType string) ([]*entity.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE type = ? ORDER BY date, id`, txType)
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func scanTransaction(row rowScanner) (*entity.Transaction, error) {
	var (
		t         entity.Transaction
		date      string
		price     string
		createdAt int64
	)
	if err := row.Scan(&t.ID, &date, &t.Type, &t.ProductID, &t.Quantity, &price, &createdAt); err != nil {
		return nil, err
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("fecha %q: %w", date, err)
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("precio %q: %w", price, err)
	}
	t.Date = d
	t.Price = p
	t.CreatedAt = fromMillis(createdAt)
	return &t, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, date, type, product_id, quantity, price, created_at`

// TransactionRepo implementación de TransactionRepository sobre PostgreSQL (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste la transacción y asigna el ID generado.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO transactions (date, type, product_id, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, t.Date, t.Type, t.ProductID, t.Quantity, t.Price, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return mapError("create transaction", err)
	}
	return nil
}

// GetByID obtiene una transacción; nil si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// Delete elimina la transacción; ErrNotFound si no existe.
func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return mapError("delete transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transacción %d", domain.ErrNotFound, id)
	}
	return nil
}

// ListAll lista todas las transacciones ordenadas por fecha.
func (r *TransactionRepo) ListAll(ctx context.Context) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY date, id`
	return r.list(ctx, "list transactions", query)
}

// ListByDates lista transacciones con from <= date <= to.
func (r *TransactionRepo) ListByDates(ctx context.Context, from, to time.Time) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE date BETWEEN $1 AND $2 ORDER BY date, id`
	return r.list(ctx, "list transactions by dates", query, from, to)
}

// ListByDatesAndProduct igual que ListByDates filtrando por producto.
func (r *TransactionRepo) ListByDatesAndProduct(ctx context.Context, from, to time.Time, productID int64) ([]*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE product_id = $3 AND date BETWEEN $1 AND $2
		ORDER BY date, id`
	return r.list(ctx, "list transactions by dates and product", query, from, to, productID)
}

// ListByType lista las transacciones del tipo indicado ordenadas por fecha.
func (r *TransactionRepo) ListByType(ctx context.Context, txType string) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE type = $1 ORDER BY date, id`
	return r.list(ctx, "list transactions by type", query, txType)
}

func (r *TransactionRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]*entity.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	if err := row.Scan(&t.ID, &t.Date, &t.Type, &t.ProductID, &t.Quantity, &t.Price, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Date = t.Date.UTC()
	return &t, nil
}

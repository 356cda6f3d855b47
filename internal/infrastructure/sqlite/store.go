// Package sqlite persiste el kardex en SQLite (modernc, sin cgo) para ejecuciones locales de un solo nodo.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/rfranzoia/cloud-ready-stock/internal/application/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS stock_periods (
	product_id       INTEGER NOT NULL,
	year_month       TEXT    NOT NULL,
	previous_balance INTEGER NOT NULL DEFAULT 0,
	inputs           INTEGER NOT NULL DEFAULT 0,
	outputs          INTEGER NOT NULL DEFAULT 0,
	current_balance  INTEGER NOT NULL DEFAULT 0,
	updated_at       INTEGER NOT NULL,
	PRIMARY KEY (product_id, year_month)
);
CREATE INDEX IF NOT EXISTS idx_stock_periods_year_month ON stock_periods (year_month);

CREATE TABLE IF NOT EXISTS transactions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	date       TEXT    NOT NULL,
	type       TEXT    NOT NULL CHECK (type IN ('INPUT', 'OUTPUT')),
	product_id INTEGER NOT NULL,
	quantity   INTEGER NOT NULL CHECK (quantity >= 0),
	price      TEXT    NOT NULL DEFAULT '0',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date);
CREATE INDEX IF NOT EXISTS idx_transactions_product_date ON transactions (product_id, date);
`

// querier lo implementan *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store mantiene el handle SQLite. Una sola conexión: SQLite serializa escrituras y ":memory:" es por conexión.
type Store struct {
	sqlDB *sql.DB
}

// Open abre (o crea) la base en path y aplica el esquema. path ":memory:" sirve para tests.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: path requerido")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrar esquema sqlite: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close cierra el handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Stocks devuelve el repositorio de saldos fuera de transacción.
func (s *Store) Stocks() *StockPeriodRepo { return &StockPeriodRepo{q: s.sqlDB} }

// Transactions devuelve el repositorio de transacciones fuera de transacción.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{q: s.sqlDB} }

// Run ejecuta fn dentro de una transacción SQLite; cualquier error hace Rollback.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockPeriodRepository,
	txRepo repository.TransactionRepository,
) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&StockPeriodRepo{q: tx}, &TransactionRepo{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// mapError traduce violaciones de restricción a domain.ErrConstraintViolation.
func mapError(op string, err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3lib.SQLITE_CONSTRAINT {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConstraintViolation, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

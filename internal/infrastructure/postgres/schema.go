package postgres

import (
	"context"
	"fmt"
)

// schema crea las tablas del kardex si no existen. year_month es YYYYMM: el orden de texto es cronológico.
const schema = `
CREATE TABLE IF NOT EXISTS stock_periods (
	product_id       BIGINT      NOT NULL,
	year_month       CHAR(6)     NOT NULL,
	previous_balance BIGINT      NOT NULL DEFAULT 0,
	inputs           BIGINT      NOT NULL DEFAULT 0,
	outputs          BIGINT      NOT NULL DEFAULT 0,
	current_balance  BIGINT      NOT NULL DEFAULT 0,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (product_id, year_month)
);

CREATE INDEX IF NOT EXISTS idx_stock_periods_year_month ON stock_periods (year_month);

CREATE TABLE IF NOT EXISTS transactions (
	id         BIGSERIAL     PRIMARY KEY,
	date       DATE          NOT NULL,
	type       VARCHAR(10)   NOT NULL CHECK (type IN ('INPUT', 'OUTPUT')),
	product_id BIGINT        NOT NULL,
	quantity   BIGINT        NOT NULL CHECK (quantity >= 0),
	price      NUMERIC(18,4) NOT NULL DEFAULT 0 CHECK (price >= 0),
	created_at TIMESTAMPTZ   NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date);
CREATE INDEX IF NOT EXISTS idx_transactions_product_date ON transactions (product_id, date);
`

// Migrate aplica el esquema (idempotente).
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrar esquema: %w", err)
	}
	return nil
}

package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
)

// mapError traduce violaciones de integridad (clase 23) a domain.ErrConstraintViolation.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) == 5 && pgErr.Code[:2] == "23" {
		return fmt.Errorf("%s: %w: %s", op, domain.ErrConstraintViolation, pgErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

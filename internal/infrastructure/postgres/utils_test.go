package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
)

func TestMapError_Restricciones(t *testing.T) {
	err := mapError("create transaction", &pgconn.PgError{Code: "23514", Message: "check constraint"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.Contains(t, err.Error(), "create transaction")

	err = mapError("save stock period", &pgconn.PgError{Code: "40001", Message: "serialization failure"})
	assert.NotErrorIs(t, err, domain.ErrConstraintViolation)

	plain := errors.New("conexión cerrada")
	err = mapError("op", plain)
	assert.ErrorIs(t, err, plain)
}

package repository

import (
	"context"
	"time"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia para transacciones (DIP).
// Los listados se devuelven ordenados por fecha.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id int64) (*entity.Transaction, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]*entity.Transaction, error)
	ListByDates(ctx context.Context, from, to time.Time) ([]*entity.Transaction, error)
	ListByDatesAndProduct(ctx context.Context, from, to time.Time, productID int64) ([]*entity.Transaction, error)
	ListByType(ctx context.Context, txType string) ([]*entity.Transaction, error)
}

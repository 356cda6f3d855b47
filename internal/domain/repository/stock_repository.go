package repository

import (
	"context"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
)

// StockPeriodRepository define el puerto para los saldos mensuales por producto.
// Usado dentro de transacciones para garantizar consistencia de la cadena.
type StockPeriodRepository interface {
	// Get devuelve nil, nil si no existe registro para (producto, periodo).
	Get(ctx context.Context, productID int64, period inventory.Period) (*entity.StockPeriod, error)
	// LatestBefore devuelve el registro más reciente con floor <= periodo < before, o nil.
	LatestBefore(ctx context.Context, productID int64, before, floor inventory.Period) (*entity.StockPeriod, error)
	// Save inserta o reemplaza el registro completo (idempotente).
	Save(ctx context.Context, stock *entity.StockPeriod) error
	ListByProduct(ctx context.Context, productID int64) ([]*entity.StockPeriod, error)
	ListByPeriod(ctx context.Context, period inventory.Period) ([]*entity.StockPeriod, error)
	ListAll(ctx context.Context) ([]*entity.StockPeriod, error)
	// LockProduct serializa escritores del mismo producto hasta el fin de la transacción.
	LockProduct(ctx context.Context, productID int64) error
}

package inventory

import (
	"context"
	"time"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback: el kardex queda como estaba antes de la llamada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockPeriodRepository,
		txRepo repository.TransactionRepository,
	) error) error
}

// StockReportRenderer genera la tarjeta de kardex (PDF) de un producto.
type StockReportRenderer interface {
	RenderStockCard(ctx context.Context, product *entity.Product, periods []*entity.StockPeriod, generatedAt time.Time) ([]byte, error)
}

package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/rfranzoia/cloud-ready-stock/internal/application/dto"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
	"github.com/rfranzoia/cloud-ready-stock/pkg/logger"
)

// StockLedger caso de uso de consulta y ajuste directo de saldos mensuales.
type StockLedger struct {
	txRunner  TxRunner
	stockRepo repository.StockPeriodRepository
	products  productLookup
	engine    *LedgerEngine
	locks     *ProductLocks
	renderer  StockReportRenderer
	log       *logger.Logger
}

// NewStockLedger construye el caso de uso. renderer puede ser nil si no se exponen reportes.
func NewStockLedger(
	txRunner TxRunner,
	stockRepo repository.StockPeriodRepository,
	directory repository.ProductDirectory,
	engine *LedgerEngine,
	locks *ProductLocks,
	renderer StockReportRenderer,
	log *logger.Logger,
) *StockLedger {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("stocks")
	return &StockLedger{
		txRunner:  txRunner,
		stockRepo: stockRepo,
		products:  productLookup{dir: directory, log: log},
		engine:    engine,
		locks:     locks,
		renderer:  renderer,
		log:       log,
	}
}

// ListAll devuelve todos los saldos ordenados por periodo y producto.
func (uc *StockLedger) ListAll(ctx context.Context) ([]dto.StockResponse, error) {
	list, err := uc.stockRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if c := list[i].Period.Compare(list[j].Period); c != 0 {
			return c < 0
		}
		return list[i].ProductID < list[j].ProductID
	})
	return uc.enrich(ctx, list), nil
}

// GetByPeriodAndProduct devuelve el saldo de un producto en un periodo (YYYYMM).
func (uc *StockLedger) GetByPeriodAndProduct(ctx context.Context, yearMonth string, productID int64) (*dto.StockResponse, error) {
	period, err := parsePeriod(yearMonth)
	if err != nil {
		return nil, err
	}
	stock, err := uc.stockRepo.Get(ctx, productID, period)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, fmt.Errorf("%w: sin saldo para el producto %d en %s", domain.ErrNotFound, productID, period)
	}
	product, err := uc.products.forRead(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := dto.ToStockResponse(stock, product)
	return &out, nil
}

// ListByProduct devuelve la cadena de saldos del producto.
func (uc *StockLedger) ListByProduct(ctx context.Context, productID int64) ([]dto.StockResponse, error) {
	product, err := uc.products.forRead(ctx, productID)
	if err != nil {
		return nil, err
	}
	list, err := uc.stockRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ToStockResponse(s, product))
	}
	return out, nil
}

// ListByPeriod devuelve los saldos de un periodo ordenados por producto.
func (uc *StockLedger) ListByPeriod(ctx context.Context, yearMonth string) ([]dto.StockResponse, error) {
	period, err := parsePeriod(yearMonth)
	if err != nil {
		return nil, err
	}
	list, err := uc.stockRepo.ListByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return uc.enrich(ctx, list), nil
}

// UpdateStock aplica una entrada o salida directa sobre el saldo de un periodo y reconcilia el producto.
func (uc *StockLedger) UpdateStock(ctx context.Context, in dto.StockUpdateRequest) (*dto.StockResponse, error) {
	period, err := parsePeriod(in.Key.Period)
	if err != nil {
		return nil, err
	}
	if period.After(uc.engine.CurrentPeriod()) {
		return nil, fmt.Errorf("%w: el periodo %s es posterior al mes actual", domain.ErrInvalidInput, period)
	}
	if !entity.ValidTransactionType(in.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q (INPUT, OUTPUT)", domain.ErrInvalidInput, in.Type)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrInvalidInput)
	}
	productID := in.Key.ProductID
	product, err := uc.products.require(ctx, productID)
	if err != nil {
		return nil, err
	}

	unlock := uc.locks.Lock(productID)
	defer unlock()

	var stock *entity.StockPeriod
	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockPeriodRepository, _ repository.TransactionRepository) error {
		if err := stockRepo.LockProduct(ctx, productID); err != nil {
			return err
		}
		if _, err := uc.engine.Apply(ctx, stockRepo, in.Type, productID, period, in.Quantity); err != nil {
			return err
		}
		if err := uc.engine.SyncBalances(ctx, stockRepo, productID); err != nil {
			return err
		}
		// La reconciliación puede haber reescrito el registro recién aplicado.
		s, err := stockRepo.Get(ctx, productID, period)
		if err != nil {
			return err
		}
		stock = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, fmt.Errorf("%w: sin saldo para el producto %d en %s", domain.ErrNotFound, productID, period)
	}

	uc.log.Info().
		Int64("product_id", productID).
		Str("period", period.String()).
		Str("type", in.Type).
		Int64("quantity", in.Quantity).
		Int64("current_balance", stock.CurrentBalance).
		Msg("saldo actualizado")
	out := dto.ToStockResponse(stock, product)
	return &out, nil
}

// StockCardReport genera el PDF del kardex del producto.
func (uc *StockLedger) StockCardReport(ctx context.Context, productID int64) ([]byte, error) {
	if uc.renderer == nil {
		return nil, fmt.Errorf("%w: reportes no configurados", domain.ErrServiceUnavailable)
	}
	product, err := uc.products.forRead(ctx, productID)
	if err != nil {
		return nil, err
	}
	list, err := uc.stockRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: el producto %d no tiene saldos", domain.ErrNotFound, productID)
	}
	return uc.renderer.RenderStockCard(ctx, product, list, uc.engine.Now())
}

func (uc *StockLedger) enrich(ctx context.Context, list []*entity.StockPeriod) []dto.StockResponse {
	out := make([]dto.StockResponse, 0, len(list))
	if len(list) == 0 {
		return out
	}
	products := uc.products.all(ctx)
	for _, s := range list {
		out = append(out, dto.ToStockResponse(s, lookupOrPlaceholder(products, s.ProductID)))
	}
	return out
}

func parsePeriod(s string) (inventory.Period, error) {
	p, err := inventory.ParsePeriod(s)
	if err != nil {
		return inventory.Period{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return p, nil
}

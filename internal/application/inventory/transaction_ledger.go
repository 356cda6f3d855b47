package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rfranzoia/cloud-ready-stock/internal/application/dto"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
	"github.com/rfranzoia/cloud-ready-stock/pkg/logger"
)

// TransactionLedger caso de uso de transacciones: registra entradas/salidas y mantiene el kardex.
type TransactionLedger struct {
	txRunner     TxRunner
	txRepo       repository.TransactionRepository
	products     productLookup
	engine       *LedgerEngine
	locks        *ProductLocks
	syncOnDelete bool
	log          *logger.Logger
}

// NewTransactionLedger construye el caso de uso. txRepo se usa solo para lecturas fuera de transacción.
func NewTransactionLedger(
	txRunner TxRunner,
	txRepo repository.TransactionRepository,
	directory repository.ProductDirectory,
	engine *LedgerEngine,
	locks *ProductLocks,
	syncOnDelete bool,
	log *logger.Logger,
) *TransactionLedger {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("transactions")
	return &TransactionLedger{
		txRunner:     txRunner,
		txRepo:       txRepo,
		products:     productLookup{dir: directory, log: log},
		engine:       engine,
		locks:        locks,
		syncOnDelete: syncOnDelete,
		log:          log,
	}
}

// Create valida y registra una transacción, aplica su efecto al kardex y reconcilia el producto.
// El producto se resuelve antes de cualquier validación o escritura.
func (uc *TransactionLedger) Create(ctx context.Context, in dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	product, err := uc.products.require(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	tx, err := uc.validate(in)
	if err != nil {
		return nil, err
	}
	period := inventory.PeriodOf(tx.Date)

	unlock := uc.locks.Lock(tx.ProductID)
	defer unlock()

	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockPeriodRepository, txRepo repository.TransactionRepository) error {
		if err := stockRepo.LockProduct(ctx, tx.ProductID); err != nil {
			return err
		}
		if err := txRepo.Create(ctx, tx); err != nil {
			return err
		}
		if _, err := uc.engine.Apply(ctx, stockRepo, tx.Type, tx.ProductID, period, tx.Quantity); err != nil {
			return err
		}
		return uc.engine.SyncBalances(ctx, stockRepo, tx.ProductID)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("transaction_id", tx.ID).
		Int64("product_id", tx.ProductID).
		Str("type", tx.Type).
		Int64("quantity", tx.Quantity).
		Str("period", period.String()).
		Msg("transacción registrada")
	out := dto.ToTransactionResponse(tx, product)
	return &out, nil
}

// Delete revierte el efecto de la transacción sobre el kardex y la elimina.
func (uc *TransactionLedger) Delete(ctx context.Context, id int64) error {
	existing, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: transacción %d", domain.ErrNotFound, id)
	}

	unlock := uc.locks.Lock(existing.ProductID)
	defer unlock()

	var removed *entity.Transaction
	err = uc.txRunner.Run(ctx, func(stockRepo repository.StockPeriodRepository, txRepo repository.TransactionRepository) error {
		if err := stockRepo.LockProduct(ctx, existing.ProductID); err != nil {
			return err
		}
		// Releer dentro de la tx: otra réplica pudo eliminarla mientras esperábamos el lock.
		tx, err := txRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if tx == nil {
			return fmt.Errorf("%w: transacción %d", domain.ErrNotFound, id)
		}
		period := inventory.PeriodOf(tx.Date)
		if _, err := uc.engine.Revert(ctx, stockRepo, tx.Type, tx.ProductID, period, tx.Quantity); err != nil {
			return err
		}
		if err := txRepo.Delete(ctx, id); err != nil {
			return err
		}
		removed = tx
		if !uc.syncOnDelete {
			return nil
		}
		return uc.engine.SyncBalances(ctx, stockRepo, tx.ProductID)
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Int64("transaction_id", removed.ID).
		Int64("product_id", removed.ProductID).
		Str("type", removed.Type).
		Int64("quantity", removed.Quantity).
		Msg("transacción eliminada")
	return nil
}

// GetByID devuelve la transacción enriquecida con el producto.
func (uc *TransactionLedger) GetByID(ctx context.Context, id int64) (*dto.TransactionResponse, error) {
	tx, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: transacción %d", domain.ErrNotFound, id)
	}
	product, err := uc.products.forRead(ctx, tx.ProductID)
	if err != nil {
		// El producto pudo ser eliminado del catálogo; la transacción sigue siendo válida.
		product = entity.PlaceholderProduct(tx.ProductID)
	}
	out := dto.ToTransactionResponse(tx, product)
	return &out, nil
}

// ListAll devuelve todas las transacciones ordenadas por fecha.
func (uc *TransactionLedger) ListAll(ctx context.Context) ([]dto.TransactionResponse, error) {
	list, err := uc.txRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return uc.enrich(ctx, list), nil
}

// ListByDates devuelve las transacciones entre start y end (YYYY-MM-DD, inclusive).
// Sin start se usa el primer día del mes actual; sin end, el último.
func (uc *TransactionLedger) ListByDates(ctx context.Context, start, end string) ([]dto.TransactionResponse, error) {
	from, to, err := uc.ResolveDateRange(start, end)
	if err != nil {
		return nil, err
	}
	list, err := uc.txRepo.ListByDates(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return uc.enrich(ctx, list), nil
}

// ListByDatesAndProduct igual que ListByDates filtrando por producto.
func (uc *TransactionLedger) ListByDatesAndProduct(ctx context.Context, start, end string, productID int64) ([]dto.TransactionResponse, error) {
	from, to, err := uc.ResolveDateRange(start, end)
	if err != nil {
		return nil, err
	}
	product, err := uc.products.forRead(ctx, productID)
	if err != nil {
		return nil, err
	}
	list, err := uc.txRepo.ListByDatesAndProduct(ctx, from, to, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionResponse, 0, len(list))
	for _, tx := range list {
		out = append(out, dto.ToTransactionResponse(tx, product))
	}
	return out, nil
}

// ListByType devuelve las transacciones del tipo indicado agrupadas por tipo.
func (uc *TransactionLedger) ListByType(ctx context.Context, txType string) (map[string][]dto.TransactionResponse, error) {
	if !entity.ValidTransactionType(txType) {
		return nil, fmt.Errorf("%w: tipo de transacción %q (INPUT, OUTPUT)", domain.ErrInvalidInput, txType)
	}
	list, err := uc.txRepo.ListByType(ctx, txType)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]dto.TransactionResponse, 1)
	for _, tx := range uc.enrich(ctx, list) {
		grouped[tx.Type] = append(grouped[tx.Type], tx)
	}
	if _, ok := grouped[txType]; !ok {
		grouped[txType] = []dto.TransactionResponse{}
	}
	return grouped, nil
}

// ResolveDateRange interpreta el rango de fechas de los listados.
func (uc *TransactionLedger) ResolveDateRange(start, end string) (time.Time, time.Time, error) {
	month := uc.engine.CurrentPeriod()
	from := month.Start()
	to := month.Next().Start().AddDate(0, 0, -1)

	if start != "" {
		d, err := parseDate(start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = d
	}
	if end != "" {
		d, err := parseDate(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = d
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: la fecha final %s es anterior a la inicial %s",
			domain.ErrInvalidInput, to.Format(dto.DateLayout), from.Format(dto.DateLayout))
	}
	return from, to, nil
}

func (uc *TransactionLedger) validate(in dto.CreateTransactionRequest) (*entity.Transaction, error) {
	if !entity.ValidTransactionType(in.Type) {
		return nil, fmt.Errorf("%w: tipo de transacción %q (INPUT, OUTPUT)", domain.ErrInvalidInput, in.Type)
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	today := uc.engine.Today()
	if date.After(today) {
		return nil, fmt.Errorf("%w: la fecha %s está en el futuro", domain.ErrInvalidInput, in.Date)
	}
	if date.Year() < today.Year() {
		return nil, fmt.Errorf("%w: la fecha %s es anterior al año en curso", domain.ErrInvalidInput, in.Date)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: el precio no puede ser negativo", domain.ErrInvalidInput)
	}
	return &entity.Transaction{
		Date:      date,
		Type:      in.Type,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Price:     in.Price,
		CreatedAt: uc.engine.Now().UTC(),
	}, nil
}

func (uc *TransactionLedger) enrich(ctx context.Context, list []*entity.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(list))
	if len(list) == 0 {
		return out
	}
	products := uc.products.all(ctx)
	for _, tx := range list {
		out = append(out, dto.ToTransactionResponse(tx, lookupOrPlaceholder(products, tx.ProductID)))
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q (formato YYYY-MM-DD)", domain.ErrInvalidInput, s)
	}
	return d, nil
}

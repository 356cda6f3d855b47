package inventory

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
	"github.com/rfranzoia/cloud-ready-stock/pkg/logger"
)

// DefaultMaxLookbackMonths tope por defecto de la búsqueda del periodo anterior (10 años).
const DefaultMaxLookbackMonths = 120

const tracerName = "github.com/rfranzoia/cloud-ready-stock/internal/application/inventory"

// LedgerConfig parámetros del motor de saldos.
type LedgerConfig struct {
	ClampPolicy       inventory.ClampPolicy
	MaxLookbackMonths int
	// CarryPriorYear siembra la reconciliación con el saldo del último periodo de años anteriores
	// en lugar de 0. Los periodos de años anteriores nunca se reescriben.
	CarryPriorYear bool
	// Now reloj del motor; nil usa time.Now.
	Now func() time.Time
}

// LedgerEngine mantiene la cadena de saldos mensuales de cada producto (kardex).
// No toma locks: el caller debe tener la sección crítica del producto (ProductLocks)
// y pasar repositorios atados a una transacción (TxRunner).
type LedgerEngine struct {
	policy         inventory.ClampPolicy
	lookback       int
	carryPriorYear bool
	now            func() time.Time
	log            *logger.Logger
	tracer         trace.Tracer
}

// NewLedgerEngine construye el motor.
func NewLedgerEngine(cfg LedgerConfig, log *logger.Logger) *LedgerEngine {
	if cfg.ClampPolicy == "" {
		cfg.ClampPolicy = inventory.ClampNonNegative
	}
	if cfg.MaxLookbackMonths <= 0 {
		cfg.MaxLookbackMonths = DefaultMaxLookbackMonths
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerEngine{
		policy:         cfg.ClampPolicy,
		lookback:       cfg.MaxLookbackMonths,
		carryPriorYear: cfg.CarryPriorYear,
		now:            cfg.Now,
		log:            log.WithComponent("ledger"),
		tracer:         otel.Tracer(tracerName),
	}
}

// Policy devuelve la política de saldo en uso.
func (e *LedgerEngine) Policy() inventory.ClampPolicy { return e.policy }

// Now devuelve la hora según el reloj del motor.
func (e *LedgerEngine) Now() time.Time { return e.now() }

// CurrentPeriod devuelve el mes calendario actual.
func (e *LedgerEngine) CurrentPeriod() inventory.Period { return inventory.PeriodOf(e.now()) }

// Today devuelve la fecha calendario actual en la zona del reloj, a medianoche UTC como las
// fechas de transacción. Coincide siempre con CurrentPeriod.
func (e *LedgerEngine) Today() time.Time {
	n := e.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Apply despacha a ApplyInput o ApplyOutput según el tipo de transacción.
func (e *LedgerEngine) Apply(ctx context.Context, repo repository.StockPeriodRepository, txType string, productID int64, period inventory.Period, qty int64) (*entity.StockPeriod, error) {
	switch txType {
	case entity.TransactionTypeInput:
		return e.ApplyInput(ctx, repo, productID, period, qty)
	case entity.TransactionTypeOutput:
		return e.ApplyOutput(ctx, repo, productID, period, qty)
	}
	return nil, fmt.Errorf("%w: tipo de transacción %q", domain.ErrInvalidInput, txType)
}

// Revert deshace el efecto de una transacción: una entrada se retira y una salida se devuelve.
func (e *LedgerEngine) Revert(ctx context.Context, repo repository.StockPeriodRepository, txType string, productID int64, period inventory.Period, qty int64) (*entity.StockPeriod, error) {
	switch txType {
	case entity.TransactionTypeInput:
		return e.ApplyOutput(ctx, repo, productID, period, qty)
	case entity.TransactionTypeOutput:
		return e.ApplyInput(ctx, repo, productID, period, qty)
	}
	return nil, fmt.Errorf("%w: no se puede revertir el tipo %q", domain.ErrInvalidInput, txType)
}

// ApplyInput suma qty a las entradas del periodo. Si el periodo no tiene registro se crea
// con el saldo del periodo anterior más cercano. Periodos pasados se propagan hasta el mes actual.
func (e *LedgerEngine) ApplyInput(ctx context.Context, repo repository.StockPeriodRepository, productID int64, period inventory.Period, qty int64) (*entity.StockPeriod, error) {
	ctx, span := e.startSpan(ctx, "ledger.apply_input", productID, period, qty)
	defer span.End()

	if qty < 0 {
		return nil, e.fail(span, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput))
	}

	stock, err := repo.Get(ctx, productID, period)
	if err != nil {
		return nil, e.fail(span, err)
	}
	if stock == nil {
		prev, err := e.nearestEarlier(ctx, repo, productID, period)
		if err != nil {
			return nil, e.fail(span, err)
		}
		var previous int64
		if prev != nil {
			previous = prev.CurrentBalance
		}
		stock = &entity.StockPeriod{
			ProductID:       productID,
			Period:          period,
			PreviousBalance: previous,
			Inputs:          qty,
		}
	} else {
		stock.Inputs += qty
	}
	stock.CurrentBalance = e.policy.Balance(stock.PreviousBalance, stock.Inputs, stock.Outputs)

	if err := e.save(ctx, repo, stock); err != nil {
		return nil, e.fail(span, err)
	}
	if err := e.propagateIfPast(ctx, repo, stock); err != nil {
		return nil, e.fail(span, err)
	}
	return stock, nil
}

// ApplyOutput suma qty a las salidas del periodo. Falla con InsufficientStockError si el saldo
// disponible no alcanza y con ErrNotFound si no existe historia previa; en ambos casos no escribe nada.
func (e *LedgerEngine) ApplyOutput(ctx context.Context, repo repository.StockPeriodRepository, productID int64, period inventory.Period, qty int64) (*entity.StockPeriod, error) {
	ctx, span := e.startSpan(ctx, "ledger.apply_output", productID, period, qty)
	defer span.End()

	if qty < 0 {
		return nil, e.fail(span, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput))
	}

	stock, err := repo.Get(ctx, productID, period)
	if err != nil {
		return nil, e.fail(span, err)
	}
	if stock == nil {
		prev, err := e.nearestEarlier(ctx, repo, productID, period)
		if err != nil {
			return nil, e.fail(span, err)
		}
		if prev == nil {
			e.log.Info().Int64("product_id", productID).Str("period", period.String()).
				Msg("sin información de stock, no es posible retirar")
			return nil, e.fail(span, fmt.Errorf("%w: sin información de stock para el producto %d en %s, no es posible retirar",
				domain.ErrNotFound, productID, period))
		}
		if prev.CurrentBalance < qty {
			return nil, e.fail(span, e.insufficient(productID, period, prev.CurrentBalance, qty))
		}
		stock = &entity.StockPeriod{
			ProductID:       productID,
			Period:          period,
			PreviousBalance: prev.CurrentBalance,
			Outputs:         qty,
		}
	} else {
		if stock.CurrentBalance < qty {
			return nil, e.fail(span, e.insufficient(productID, period, stock.CurrentBalance, qty))
		}
		stock.Outputs += qty
	}
	stock.CurrentBalance = e.policy.Balance(stock.PreviousBalance, stock.Inputs, stock.Outputs)

	if err := e.save(ctx, repo, stock); err != nil {
		return nil, e.fail(span, err)
	}
	if err := e.propagateIfPast(ctx, repo, stock); err != nil {
		return nil, e.fail(span, err)
	}
	return stock, nil
}

// ForwardPropagate recalcula los periodos posteriores a from hasta el mes actual inclusive,
// materializando meses sin movimiento con el saldo arrastrado.
func (e *LedgerEngine) ForwardPropagate(ctx context.Context, repo repository.StockPeriodRepository, productID int64, from inventory.Period) error {
	ctx, span := e.startSpan(ctx, "ledger.forward_propagate", productID, from, 0)
	defer span.End()

	anchor, err := repo.Get(ctx, productID, from)
	if err != nil {
		return e.fail(span, err)
	}
	if anchor == nil {
		return e.fail(span, fmt.Errorf("%w: sin saldo para el producto %d en %s", domain.ErrNotFound, productID, from))
	}
	return e.fail(span, e.forwardFrom(ctx, repo, anchor))
}

// SyncBalances reconcilia toda la cadena del producto desde su primer periodo del año en curso.
// Los periodos de años anteriores no se modifican.
func (e *LedgerEngine) SyncBalances(ctx context.Context, repo repository.StockPeriodRepository, productID int64) error {
	ctx, span := e.tracer.Start(ctx, "ledger.sync_balances",
		trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	list, err := repo.ListByProduct(ctx, productID)
	if err != nil {
		return e.fail(span, err)
	}

	year := e.now().Year()
	var previous int64
	updated := 0
	for _, s := range list {
		if s.Period.Year < year {
			if e.carryPriorYear {
				previous = s.CurrentBalance
			}
			continue
		}
		next := *s
		next.PreviousBalance = previous
		next.CurrentBalance = e.policy.Balance(previous, s.Inputs, s.Outputs)
		if !next.SameBalances(s) {
			if err := e.save(ctx, repo, &next); err != nil {
				return e.fail(span, err)
			}
			updated++
		}
		previous = next.CurrentBalance
	}
	span.SetAttributes(attribute.Int("ledger.periods_updated", updated))
	if updated > 0 {
		e.log.Info().Int64("product_id", productID).Int("updated", updated).Msg("saldos reconciliados")
	}
	return nil
}

func (e *LedgerEngine) propagateIfPast(ctx context.Context, repo repository.StockPeriodRepository, stock *entity.StockPeriod) error {
	if !stock.Period.Before(e.CurrentPeriod()) {
		return nil
	}
	return e.forwardFrom(ctx, repo, stock)
}

func (e *LedgerEngine) forwardFrom(ctx context.Context, repo repository.StockPeriodRepository, anchor *entity.StockPeriod) error {
	balance := anchor.CurrentBalance
	current := e.CurrentPeriod()
	for p := anchor.Period.Next(); !p.After(current); p = p.Next() {
		stock, err := repo.Get(ctx, anchor.ProductID, p)
		if err != nil {
			return err
		}
		if stock == nil {
			stock = &entity.StockPeriod{
				ProductID:       anchor.ProductID,
				Period:          p,
				PreviousBalance: balance,
				CurrentBalance:  balance,
			}
		} else {
			before := *stock
			stock.PreviousBalance = balance
			stock.CurrentBalance = e.policy.Balance(balance, stock.Inputs, stock.Outputs)
			if stock.SameBalances(&before) {
				e.log.Trace().Int64("product_id", stock.ProductID).Str("period", p.String()).Msg("periodo sin cambios")
				balance = stock.CurrentBalance
				continue
			}
		}
		if err := e.save(ctx, repo, stock); err != nil {
			return err
		}
		balance = stock.CurrentBalance
	}
	return nil
}

// nearestEarlier busca el registro anterior más cercano dentro de la ventana de lookback.
func (e *LedgerEngine) nearestEarlier(ctx context.Context, repo repository.StockPeriodRepository, productID int64, period inventory.Period) (*entity.StockPeriod, error) {
	floor := period.AddMonths(-e.lookback)
	return repo.LatestBefore(ctx, productID, period, floor)
}

func (e *LedgerEngine) save(ctx context.Context, repo repository.StockPeriodRepository, stock *entity.StockPeriod) error {
	stock.UpdatedAt = e.now()
	if err := repo.Save(ctx, stock); err != nil {
		return fmt.Errorf("guardar saldo %d/%s: %w", stock.ProductID, stock.Period, err)
	}
	e.log.Debug().
		Int64("product_id", stock.ProductID).
		Str("period", stock.Period.String()).
		Int64("previous", stock.PreviousBalance).
		Int64("inputs", stock.Inputs).
		Int64("outputs", stock.Outputs).
		Int64("current", stock.CurrentBalance).
		Msg("saldo guardado")
	return nil
}

func (e *LedgerEngine) insufficient(productID int64, period inventory.Period, available, requested int64) error {
	e.log.Info().Int64("product_id", productID).Str("period", period.String()).
		Int64("available", available).Int64("requested", requested).
		Msg("la cantidad a retirar excede el saldo actual")
	return &domain.InsufficientStockError{
		ProductID: productID,
		Period:    period.String(),
		Available: available,
		Requested: requested,
	}
}

func (e *LedgerEngine) startSpan(ctx context.Context, name string, productID int64, period inventory.Period, qty int64) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Int64("product.id", productID),
		attribute.String("stock.period", period.String()),
		attribute.Int64("stock.quantity", qty),
	))
}

// fail registra el error en el span y lo devuelve sin cambios (nil pasa de largo).
func (e *LedgerEngine) fail(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

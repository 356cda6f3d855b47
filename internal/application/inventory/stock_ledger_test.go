package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/rfranzoia/cloud-ready-stock/internal/application/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/application/dto"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/infrastructure/memory"
	"github.com/rfranzoia/cloud-ready-stock/pkg/logger"
)

type fakeRenderer struct {
	product *entity.Product
	periods []*entity.StockPeriod
	at      time.Time
}

func (r *fakeRenderer) RenderStockCard(_ context.Context, product *entity.Product, periods []*entity.StockPeriod, at time.Time) ([]byte, error) {
	r.product, r.periods, r.at = product, periods, at
	return []byte("%PDF-fake"), nil
}

func TestStockLedger_UpdateStock(t *testing.T) {
	f := newLedgerFixture(t, true)
	ctx := context.Background()

	out, err := f.stocks.UpdateStock(ctx, dto.StockUpdateRequest{
		Key:  dto.StockKey{Period: "202402", ProductID: productP},
		Type: entity.TransactionTypeInput, Quantity: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "202402", out.Key.Period)
	assert.Equal(t, int64(40), out.CurrentBalance)
	assert.Equal(t, "Café molido", out.Product.Name)
	assert.Equal(t, int64(40), f.stock(t, "202403").PreviousBalance)

	_, err = f.stocks.UpdateStock(ctx, dto.StockUpdateRequest{
		Key:  dto.StockKey{Period: "202403", ProductID: productP},
		Type: entity.TransactionTypeOutput, Quantity: 41,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestStockLedger_UpdateStockValidaciones(t *testing.T) {
	f := newLedgerFixture(t, true)
	ctx := context.Background()

	cases := map[string]dto.StockUpdateRequest{
		"periodo futuro":      {Key: dto.StockKey{Period: "202404", ProductID: productP}, Type: "INPUT", Quantity: 1},
		"periodo mal formado": {Key: dto.StockKey{Period: "2024-3", ProductID: productP}, Type: "INPUT", Quantity: 1},
		"tipo desconocido":    {Key: dto.StockKey{Period: "202403", ProductID: productP}, Type: "X", Quantity: 1},
		"cantidad negativa":   {Key: dto.StockKey{Period: "202403", ProductID: productP}, Type: "INPUT", Quantity: -2},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.stocks.UpdateStock(ctx, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	f.dir.SetUnavailable(true)
	_, err := f.stocks.UpdateStock(ctx, dto.StockUpdateRequest{
		Key: dto.StockKey{Period: "202403", ProductID: productP}, Type: "INPUT", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestStockLedger_Consultas(t *testing.T) {
	f := newLedgerFixture(t, true)
	ctx := context.Background()
	f.create(t, "2024-02-01", entity.TransactionTypeInput, 8)
	_, err := f.txs.Create(ctx, dto.CreateTransactionRequest{Date: "2024-03-03", Type: "INPUT", ProductID: 11, Quantity: 2})
	require.NoError(t, err)

	all, err := f.stocks.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "202402", all[0].Key.Period)
	assert.Equal(t, productP, all[1].Key.ProductID)
	assert.Equal(t, int64(11), all[2].Key.ProductID)

	march, err := f.stocks.ListByPeriod(ctx, "202403")
	require.NoError(t, err)
	require.Len(t, march, 2)
	assert.Equal(t, "Azúcar", march[1].Product.Name)

	one, err := f.stocks.GetByPeriodAndProduct(ctx, "202402", productP)
	require.NoError(t, err)
	assert.Equal(t, int64(8), one.CurrentBalance)

	_, err = f.stocks.GetByPeriodAndProduct(ctx, "202401", productP)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chain, err := f.stocks.ListByProduct(ctx, productP)
	require.NoError(t, err)
	assert.Len(t, chain, 2)

	_, err = f.stocks.ListByProduct(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.dir.SetUnavailable(true)
	degraded, err := f.stocks.ListAll(ctx)
	require.NoError(t, err)
	for _, s := range degraded {
		assert.Equal(t, entity.UnavailableProductName, s.Product.Name)
	}
	chain, err = f.stocks.ListByProduct(ctx, productP)
	require.NoError(t, err)
	assert.Equal(t, entity.UnavailableProductName, chain[0].Product.Name)
}

func TestStockLedger_StockCardReport(t *testing.T) {
	store := memory.NewStore()
	f := newLedgerFixture(t, true)
	renderer := &fakeRenderer{}
	engine := newEngine(inventory.ClampNonNegative)
	stocks := appinventory.NewStockLedger(memory.NewTxRunner(store), store.Stocks(), f.dir, engine,
		appinventory.NewProductLocks(), renderer, logger.Nop())
	ctx := context.Background()

	_, err := stocks.StockCardReport(ctx, productP)
	require.ErrorIs(t, err, domain.ErrNotFound, "sin saldos no hay reporte")

	_, err = stocks.UpdateStock(ctx, dto.StockUpdateRequest{
		Key: dto.StockKey{Period: "202401", ProductID: productP}, Type: "INPUT", Quantity: 4,
	})
	require.NoError(t, err)

	pdf, err := stocks.StockCardReport(ctx, productP)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "Café molido", renderer.product.Name)
	assert.Len(t, renderer.periods, 3)
	assert.Equal(t, fixedNow, renderer.at)
}

func TestStockLedger_SinRenderer(t *testing.T) {
	f := newLedgerFixture(t, true)
	_, err := f.stocks.StockCardReport(context.Background(), productP)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestStockLedger_GetByPeriodAndProductSinProducto(t *testing.T) {
	f := newLedgerFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.store.Stocks().Save(ctx, &entity.StockPeriod{
		ProductID: 999, Period: period("202403"), Inputs: 3, CurrentBalance: 3,
	}))

	_, err := f.stocks.GetByPeriodAndProduct(ctx, "202403", 999)
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto inexistente en el directorio")

	f.dir.SetUnavailable(true)
	one, err := f.stocks.GetByPeriodAndProduct(ctx, "202403", 999)
	require.NoError(t, err)
	assert.Equal(t, entity.UnavailableProductName, one.Product.Name)
	assert.Equal(t, int64(3), one.CurrentBalance)
}

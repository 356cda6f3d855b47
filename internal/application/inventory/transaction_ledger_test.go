package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/rfranzoia/cloud-ready-stock/internal/application/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/application/dto"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/infrastructure/memory"
	"github.com/rfranzoia/cloud-ready-stock/internal/infrastructure/productdir"
	"github.com/rfranzoia/cloud-ready-stock/pkg/logger"
)

const productP int64 = 10

type ledgerFixture struct {
	store  *memory.Store
	dir    *productdir.StaticDirectory
	txs    *appinventory.TransactionLedger
	stocks *appinventory.StockLedger
}

func newLedgerFixture(t *testing.T, syncOnDelete bool) *ledgerFixture {
	t.Helper()
	return newLedgerFixtureAt(t, syncOnDelete, fixedNow)
}

// newLedgerFixtureAt arma el fixture con el reloj del motor fijo en now.
func newLedgerFixtureAt(t *testing.T, syncOnDelete bool, now time.Time) *ledgerFixture {
	t.Helper()
	store := memory.NewStore()
	dir := productdir.NewStaticDirectory(
		&entity.Product{ID: productP, Name: "Café molido", Unit: "KG", Price: decimal.RequireFromString("25.40")},
		&entity.Product{ID: 11, Name: "Azúcar", Unit: "KG"},
	)
	engine := newEngine(inventory.ClampNonNegative, func(c *appinventory.LedgerConfig) {
		c.Now = func() time.Time { return now }
	})
	locks := appinventory.NewProductLocks()
	runner := memory.NewTxRunner(store)
	return &ledgerFixture{
		store:  store,
		dir:    dir,
		txs:    appinventory.NewTransactionLedger(runner, store.Transactions(), dir, engine, locks, syncOnDelete, logger.Nop()),
		stocks: appinventory.NewStockLedger(runner, store.Stocks(), dir, engine, locks, nil, logger.Nop()),
	}
}

func (f *ledgerFixture) create(t *testing.T, date, txType string, qty int64) *dto.TransactionResponse {
	t.Helper()
	out, err := f.txs.Create(context.Background(), dto.CreateTransactionRequest{
		Date:      date,
		Type:      txType,
		ProductID: productP,
		Price:     decimal.NewFromInt(2),
		Quantity:  qty,
	})
	require.NoError(t, err)
	return out
}

func (f *ledgerFixture) stock(t *testing.T, p string) *entity.StockPeriod {
	t.Helper()
	return mustGet(t, f.store.Stocks(), productP, p)
}

func TestTransactionLedger_Escenarios(t *testing.T) {
	f := newLedgerFixture(t, true)

	// A: sin historia, entrada en enero.
	out := f.create(t, "2024-01-15", entity.TransactionTypeInput, 100)
	assert.Equal(t, "Café molido", out.Product.Name)
	assert.Equal(t, "2024-01-15", out.Date)
	jan := f.stock(t, "202401")
	assert.Equal(t, int64(0), jan.PreviousBalance)
	assert.Equal(t, int64(100), jan.Inputs)
	assert.Equal(t, int64(0), jan.Outputs)
	assert.Equal(t, int64(100), jan.CurrentBalance)

	// B: salida en febrero.
	f.create(t, "2024-02-10", entity.TransactionTypeOutput, 30)
	feb := f.stock(t, "202402")
	assert.Equal(t, f.stock(t, "202401").CurrentBalance, feb.PreviousBalance)
	assert.Equal(t, int64(30), feb.Outputs)
	assert.Equal(t, int64(70), feb.CurrentBalance)

	// D: retiro mayor al disponible (70).
	_, err := f.txs.Create(context.Background(), dto.CreateTransactionRequest{
		Date: "2024-02-10", Type: entity.TransactionTypeOutput, ProductID: productP, Quantity: 10000,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, feb.SameBalances(f.stock(t, "202402")), "febrero no cambia")
	all, err := f.txs.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2, "la transacción rechazada no se persiste")

	// C: entrada con fecha en enero después de existir febrero.
	f.create(t, "2024-01-20", entity.TransactionTypeInput, 50)
	jan = f.stock(t, "202401")
	assert.Equal(t, int64(150), jan.Inputs)
	assert.Equal(t, int64(150), jan.CurrentBalance)
	feb = f.stock(t, "202402")
	assert.Equal(t, int64(150), feb.PreviousBalance)
	assert.Equal(t, int64(120), feb.CurrentBalance)
	assert.Equal(t, int64(120), f.stock(t, "202403").CurrentBalance)

	assertChain(t, f.store.Stocks(), productP)
}

func TestTransactionLedger_CrearYEliminarRestauraSaldos(t *testing.T) {
	f := newLedgerFixture(t, true)
	ctx := context.Background()

	f.create(t, "2024-01-15", entity.TransactionTypeInput, 100)
	before, err := f.store.Stocks().ListByProduct(ctx, productP)
	require.NoError(t, err)

	out := f.create(t, "2024-02-10", entity.TransactionTypeOutput, 30)
	require.NoError(t, f.txs.Delete(ctx, out.ID))

	after, err := f.store.Stocks().ListByProduct(ctx, productP)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].PreviousBalance, after[i].PreviousBalance, after[i].Period.String())
		assert.Equal(t, before[i].CurrentBalance, after[i].CurrentBalance, after[i].Period.String())
	}
	assertChain(t, f.store.Stocks(), productP)

	_, err = f.txs.GetByID(ctx, out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionLedger_EliminarEntradaYaConsumidaSeRechaza(t *testing.T) {
	f := newLedgerFixture(t, true)
	ctx := context.Background()

	in := f.create(t, "2024-03-01", entity.TransactionTypeInput, 10)
	f.create(t, "2024-03-02", entity.TransactionTypeOutput, 8)
	snapshot := f.stock(t, "202403")

	err := f.txs.Delete(ctx, in.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, snapshot.SameBalances(f.stock(t, "202403")))
	got, err := f.txs.GetByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID, "la transacción sigue registrada")
}

func TestTransactionLedger_EliminarInexistente(t *testing.T) {
	f := newLedgerFixture(t, true)
	assert.ErrorIs(t, f.txs.Delete(context.Background(), 404), domain.ErrNotFound)
}

func TestTransactionLedger_Validaciones(t *testing.T) {
	f := newLedgerFixture(t, true)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.CreateTransactionRequest
	}{
		{"fecha futura", dto.CreateTransactionRequest{Date: "2024-03-16", Type: "INPUT", ProductID: productP, Quantity: 1}},
		{"año anterior", dto.CreateTransactionRequest{Date: "2023-12-31", Type: "INPUT", ProductID: productP, Quantity: 1}},
		{"fecha mal formada", dto.CreateTransactionRequest{Date: "15/01/2024", Type: "INPUT", ProductID: productP, Quantity: 1}},
		{"tipo desconocido", dto.CreateTransactionRequest{Date: "2024-01-15", Type: "TRANSFER", ProductID: productP, Quantity: 1}},
		{"cantidad negativa", dto.CreateTransactionRequest{Date: "2024-01-15", Type: "INPUT", ProductID: productP, Quantity: -1}},
		{"precio negativo", dto.CreateTransactionRequest{Date: "2024-01-15", Type: "INPUT", ProductID: productP, Quantity: 1, Price: decimal.NewFromInt(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.txs.Create(ctx, tc.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	all, err := f.store.Stocks().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTransactionLedger_HoyEsValido(t *testing.T) {
	f := newLedgerFixture(t, true)
	out := f.create(t, "2024-03-15", entity.TransactionTypeInput, 3)
	assert.Equal(t, int64(3), f.stock(t, "202403").CurrentBalance)
	assert.NotZero(t, out.ID)
}

func TestTransactionLedger_ProductoInexistenteOServicioCaido(t *testing.T) {
	f := newLedgerFixture(t, true)
	ctx := context.Background()

	_, err := f.txs.Create(ctx, dto.CreateTransactionRequest{Date: "2024-03-01", Type: "INPUT", ProductID: 999, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.dir.SetUnavailable(true)
	_, err = f.txs.Create(ctx, dto.CreateTransactionRequest{Date: "2024-03-01", Type: "INPUT", ProductID: productP, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)

	all, err := f.store.Stocks().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "una falla del directorio aborta antes de tocar el kardex")
}

func TestTransactionLedger_LecturasDegradadas(t *testing.T) {
	f := newLedgerFixture(t, true)
	ctx := context.Background()
	created := f.create(t, "2024-03-01", entity.TransactionTypeInput, 5)

	f.dir.SetUnavailable(true)

	all, err := f.txs.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, entity.UnavailableProductName, all[0].Product.Name)

	one, err := f.txs.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnavailableProductName, one.Product.Name)
}

func TestTransactionLedger_ListadosPorFechaYTipo(t *testing.T) {
	f := newLedgerFixture(t, true)
	ctx := context.Background()
	f.create(t, "2024-01-15", entity.TransactionTypeInput, 100)
	f.create(t, "2024-03-02", entity.TransactionTypeOutput, 10)
	f.create(t, "2024-03-05", entity.TransactionTypeInput, 1)

	// Sin fechas: mes actual completo.
	march, err := f.txs.ListByDates(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, march, 2)
	assert.Equal(t, "2024-03-02", march[0].Date)

	jan, err := f.txs.ListByDatesAndProduct(ctx, "2024-01-01", "2024-01-31", productP)
	require.NoError(t, err)
	assert.Len(t, jan, 1)

	_, err = f.txs.ListByDates(ctx, "2024-03-10", "2024-03-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	grouped, err := f.txs.ListByType(ctx, entity.TransactionTypeInput)
	require.NoError(t, err)
	assert.Len(t, grouped[entity.TransactionTypeInput], 2)

	_, err = f.txs.ListByType(ctx, "OTHER")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransactionLedger_RangoPorDefecto(t *testing.T) {
	f := newLedgerFixture(t, true)
	from, to, err := f.txs.ResolveDateRange("", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", from.Format(dto.DateLayout))
	assert.Equal(t, "2024-03-31", to.Format(dto.DateLayout))
}

func TestTransactionLedger_EntradasConcurrentesMismoProducto(t *testing.T) {
	f := newLedgerFixture(t, true)
	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.txs.Create(context.Background(), dto.CreateTransactionRequest{
				Date: "2024-02-01", Type: entity.TransactionTypeInput, ProductID: productP, Quantity: 5,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(workers*5), f.stock(t, "202402").CurrentBalance)
	assert.Equal(t, int64(workers*5), f.stock(t, "202403").CurrentBalance)
	assertChain(t, f.store.Stocks(), productP)
}

func TestTransactionLedger_FechasEnLaZonaDelReloj(t *testing.T) {
	// 31 de diciembre 21:00 en UTC-5: en UTC ya es 1 de enero.
	bogota := time.FixedZone("UTC-5", -5*60*60)
	f := newLedgerFixtureAt(t, true, time.Date(2024, time.December, 31, 21, 0, 0, 0, bogota))
	ctx := context.Background()

	f.create(t, "2024-12-31", entity.TransactionTypeInput, 4)
	assert.Equal(t, int64(4), f.stock(t, "202412").CurrentBalance)

	_, err := f.txs.Create(ctx, dto.CreateTransactionRequest{
		Date: "2025-01-01", Type: entity.TransactionTypeInput, ProductID: productP, Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "el 1 de enero todavía es futuro")

	s, err := f.store.Stocks().Get(ctx, productP, period("202501"))
	require.NoError(t, err)
	assert.Nil(t, s, "no se crea un periodo posterior al mes actual")
}

func TestTransactionLedger_EliminarSegunSyncOnDelete(t *testing.T) {
	cases := []struct {
		name         string
		syncOnDelete bool
		wantFebPrev  int64
		wantFebSaldo int64
	}{
		// Solo revierte: febrero queda desalineado como estaba.
		{"sin reconciliación", false, 0, 0},
		{"con reconciliación", true, 100, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newLedgerFixture(t, tc.syncOnDelete)
			ctx := context.Background()

			f.create(t, "2024-01-15", entity.TransactionTypeInput, 100)
			out := f.create(t, "2024-03-05", entity.TransactionTypeInput, 5)
			assert.Equal(t, int64(105), f.stock(t, "202403").CurrentBalance)

			// Desalinear febrero por fuera del motor.
			require.NoError(t, f.store.Stocks().Save(ctx, &entity.StockPeriod{
				ProductID: productP, Period: period("202402"),
			}))

			require.NoError(t, f.txs.Delete(ctx, out.ID))

			feb := f.stock(t, "202402")
			assert.Equal(t, tc.wantFebPrev, feb.PreviousBalance)
			assert.Equal(t, tc.wantFebSaldo, feb.CurrentBalance)
			mar := f.stock(t, "202403")
			assert.Equal(t, int64(5), mar.Outputs, "la entrada se revierte como salida")
			assert.Equal(t, int64(100), mar.PreviousBalance)
			assert.Equal(t, int64(100), mar.CurrentBalance)
		})
	}
}

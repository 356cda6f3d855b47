package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/rfranzoia/cloud-ready-stock/internal/application/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner simula transacciones sobre el Store: serializa las tx y restaura un snapshot ante error.
// Las lecturas fuera de tx pueden observar escrituras de una tx en curso.
type TxRunner struct {
	store *Store
	mu    sync.Mutex
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

type snapshot struct {
	stocks       map[stockKey]entity.StockPeriod
	transactions map[int64]entity.Transaction
	nextID       int64
}

// Run ejecuta fn; si devuelve error (o entra en pánico) el store vuelve al estado previo.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockPeriodRepository,
	txRepo repository.TransactionRepository,
) error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			r.store.restore(snap)
			panic(p)
		}
		if err != nil {
			r.store.restore(snap)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(r.store.Stocks(), r.store.Transactions())
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		stocks:       maps.Clone(s.stocks),
		transactions: maps.Clone(s.transactions),
		nextID:       s.nextID,
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks = snap.stocks
	s.transactions = snap.transactions
	s.nextID = snap.nextID
}

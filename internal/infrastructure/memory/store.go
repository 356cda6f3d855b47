// Package memory implementa el almacenamiento del kardex en memoria (tests y desarrollo local).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
)

var (
	_ repository.StockPeriodRepository = (*StockRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
)

type stockKey struct {
	productID int64
	period    inventory.Period
}

// Store guarda saldos y transacciones en mapas protegidos por un RWMutex.
// Los valores se copian al entrar y al salir: los callers nunca comparten punteros con el store.
type Store struct {
	mu           sync.RWMutex
	stocks       map[stockKey]entity.StockPeriod
	transactions map[int64]entity.Transaction
	nextID       int64
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		stocks:       make(map[stockKey]entity.StockPeriod),
		transactions: make(map[int64]entity.Transaction),
	}
}

// StockRepo vista de saldos del store.
type StockRepo struct{ s *Store }

// TransactionRepo vista de transacciones del store.
type TransactionRepo struct{ s *Store }

// Stocks devuelve el repositorio de saldos.
func (s *Store) Stocks() *StockRepo { return &StockRepo{s: s} }

// Transactions devuelve el repositorio de transacciones.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Get obtiene el saldo de (producto, periodo); nil si no existe.
func (r *StockRepo) Get(_ context.Context, productID int64, period inventory.Period) (*entity.StockPeriod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stocks[stockKey{productID, period}]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// LatestBefore devuelve el registro más reciente con floor <= periodo < before.
func (r *StockRepo) LatestBefore(_ context.Context, productID int64, before, floor inventory.Period) (*entity.StockPeriod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var best *entity.StockPeriod
	for k, st := range r.s.stocks {
		if k.productID != productID || !k.period.Before(before) || k.period.Before(floor) {
			continue
		}
		if best == nil || k.period.After(best.Period) {
			st := st
			best = &st
		}
	}
	return best, nil
}

// Save inserta o reemplaza el registro.
func (r *StockRepo) Save(_ context.Context, stock *entity.StockPeriod) error {
	if stock == nil {
		return fmt.Errorf("%w: saldo nil", domain.ErrInvalidInput)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stocks[stockKey{stock.ProductID, stock.Period}] = *stock
	return nil
}

// ListByProduct devuelve la cadena del producto ordenada por periodo.
func (r *StockRepo) ListByProduct(_ context.Context, productID int64) ([]*entity.StockPeriod, error) {
	return r.s.filterStocks(func(k stockKey) bool { return k.productID == productID }), nil
}

// ListByPeriod devuelve los saldos del periodo ordenados por producto.
func (r *StockRepo) ListByPeriod(_ context.Context, period inventory.Period) ([]*entity.StockPeriod, error) {
	return r.s.filterStocks(func(k stockKey) bool { return k.period == period }), nil
}

// ListAll devuelve todos los saldos ordenados por periodo y producto.
func (r *StockRepo) ListAll(_ context.Context) ([]*entity.StockPeriod, error) {
	return r.s.filterStocks(func(stockKey) bool { return true }), nil
}

// LockProduct no hace nada: el store vive en un solo proceso y las tx ya están serializadas.
func (r *StockRepo) LockProduct(context.Context, int64) error { return nil }

func (s *Store) filterStocks(match func(stockKey) bool) []*entity.StockPeriod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.StockPeriod, 0)
	for k, st := range s.stocks {
		if match(k) {
			st := st
			out = append(out, &st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Period.Compare(out[j].Period); c != 0 {
			return c < 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// Create asigna un id y guarda la transacción.
func (r *TransactionRepo) Create(_ context.Context, tx *entity.Transaction) error {
	if tx == nil {
		return fmt.Errorf("%w: transacción nil", domain.ErrInvalidInput)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	tx.ID = r.s.nextID
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	r.s.transactions[tx.ID] = *tx
	return nil
}

// GetByID devuelve la transacción o nil si no existe.
func (r *TransactionRepo) GetByID(_ context.Context, id int64) (*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tx, ok := r.s.transactions[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

// Delete elimina la transacción; ErrNotFound si no existe.
func (r *TransactionRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.transactions[id]; !ok {
		return fmt.Errorf("%w: transacción %d", domain.ErrNotFound, id)
	}
	delete(r.s.transactions, id)
	return nil
}

// ListAll devuelve todas las transacciones ordenadas por fecha.
func (r *TransactionRepo) ListAll(_ context.Context) ([]*entity.Transaction, error) {
	return r.s.filterTransactions(func(entity.Transaction) bool { return true }), nil
}

// ListByDates devuelve transacciones con from <= fecha <= to.
func (r *TransactionRepo) ListByDates(_ context.Context, from, to time.Time) ([]*entity.Transaction, error) {
	return r.s.filterTransactions(func(tx entity.Transaction) bool {
		return !tx.Date.Before(from) && !tx.Date.After(to)
	}), nil
}

// ListByDatesAndProduct igual que ListByDates filtrando por producto.
func (r *TransactionRepo) ListByDatesAndProduct(_ context.Context, from, to time.Time, productID int64) ([]*entity.Transaction, error) {
	return r.s.filterTransactions(func(tx entity.Transaction) bool {
		return tx.ProductID == productID && !tx.Date.Before(from) && !tx.Date.After(to)
	}), nil
}

// ListByType devuelve las transacciones del tipo indicado.
func (r *TransactionRepo) ListByType(_ context.Context, txType string) ([]*entity.Transaction, error) {
	return r.s.filterTransactions(func(tx entity.Transaction) bool { return tx.Type == txType }), nil
}

func (s *Store) filterTransactions(match func(entity.Transaction) bool) []*entity.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Transaction, 0)
	for _, tx := range s.transactions {
		if match(tx) {
			tx := tx
			out = append(out, &tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

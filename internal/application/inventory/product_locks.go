package inventory

import "sync"

// ProductLocks provee una sección crítica exclusiva por producto.
// Productos distintos avanzan en paralelo; las entradas se liberan cuando nadie las usa.
type ProductLocks struct {
	mu    sync.Mutex
	locks map[int64]*productLock
}

type productLock struct {
	mu   sync.Mutex
	refs int
}

// NewProductLocks construye el registro de locks.
func NewProductLocks() *ProductLocks {
	return &ProductLocks{locks: make(map[int64]*productLock)}
}

// Lock bloquea el producto y devuelve la función que lo libera.
func (l *ProductLocks) Lock(productID int64) (unlock func()) {
	l.mu.Lock()
	pl, ok := l.locks[productID]
	if !ok {
		pl = &productLock{}
		l.locks[productID] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()
		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, productID)
		}
		l.mu.Unlock()
	}
}

// Len devuelve la cantidad de productos con lock tomado o en espera.
func (l *ProductLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

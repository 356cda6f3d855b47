package productdir

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
)

var _ repository.ProductDirectory = (*StaticDirectory)(nil)

// StaticDirectory directorio en memoria (STORAGE_DRIVER=memory sin servicio de productos, y tests).
// SetUnavailable simula una caída del servicio.
type StaticDirectory struct {
	mu          sync.RWMutex
	products    map[int64]*entity.Product
	unavailable bool
}

// NewStaticDirectory construye el directorio con los productos dados.
func NewStaticDirectory(products ...*entity.Product) *StaticDirectory {
	d := &StaticDirectory{products: make(map[int64]*entity.Product, len(products))}
	for _, p := range products {
		d.products[p.ID] = p
	}
	return d
}

// Put agrega o reemplaza un producto.
func (d *StaticDirectory) Put(p *entity.Product) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.products[p.ID] = p
}

// SetUnavailable activa o desactiva la simulación de caída.
func (d *StaticDirectory) SetUnavailable(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unavailable = v
}

func (d *StaticDirectory) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.unavailable {
		return nil, fmt.Errorf("%w: directorio de productos", domain.ErrServiceUnavailable)
	}
	p, ok := d.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (d *StaticDirectory) ListAll(_ context.Context) (map[int64]*entity.Product, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.unavailable {
		return nil, fmt.Errorf("%w: directorio de productos", domain.ErrServiceUnavailable)
	}
	return maps.Clone(d.products), nil
}

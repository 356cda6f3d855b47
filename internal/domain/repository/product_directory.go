package repository

import (
	"context"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
)

// ProductDirectory es el puerto hacia el servicio externo de productos.
// GetByID devuelve domain.ErrNotFound si el producto no existe y
// domain.ErrServiceUnavailable si el servicio no responde.
type ProductDirectory interface {
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	ListAll(ctx context.Context) (map[int64]*entity.Product, error)
}

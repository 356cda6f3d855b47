package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
	"github.com/rfranzoia/cloud-ready-stock/pkg/logger"
)

// productLookup aplica la política del directorio: las escrituras fallan si no se puede
// resolver el producto, las lecturas se degradan a un producto sustituto.
type productLookup struct {
	dir repository.ProductDirectory
	log *logger.Logger
}

// require resuelve el producto para una escritura.
func (l productLookup) require(ctx context.Context, productID int64) (*entity.Product, error) {
	p, err := l.dir.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrServiceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
	}
	return p, nil
}

// forRead resuelve el producto para una lectura: un producto inexistente es error,
// un directorio caído devuelve el sustituto.
func (l productLookup) forRead(ctx context.Context, productID int64) (*entity.Product, error) {
	p, err := l.dir.GetByID(ctx, productID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, err
	case err != nil:
		l.log.Error().Err(err).Int64("product_id", productID).Msg("directorio de productos no disponible")
		return entity.PlaceholderProduct(productID), nil
	case p == nil:
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
	}
	return p, nil
}

// all devuelve todos los productos indexados por id; ante un fallo devuelve un mapa vacío.
func (l productLookup) all(ctx context.Context) map[int64]*entity.Product {
	products, err := l.dir.ListAll(ctx)
	if err != nil {
		l.log.Error().Err(err).Msg("no se pudo listar productos, se usan datos sustitutos")
		return map[int64]*entity.Product{}
	}
	if products == nil {
		return map[int64]*entity.Product{}
	}
	return products
}

func lookupOrPlaceholder(products map[int64]*entity.Product, productID int64) *entity.Product {
	if p, ok := products[productID]; ok && p != nil {
		return p
	}
	return entity.PlaceholderProduct(productID)
}

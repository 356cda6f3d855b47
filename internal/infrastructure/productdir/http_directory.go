// Package productdir adapta el servicio externo de productos al puerto ProductDirectory.
package productdir

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/repository"
)

var _ repository.ProductDirectory = (*HTTPDirectory)(nil)

const (
	productsPath   = "/api/v1/products"
	maxBodyBytes   = 4 << 20
	defaultTimeout = 5 * time.Second
)

// HTTPDirectory cliente REST del servicio de productos. Sin reintentos: el timeout acota cada llamada.
// El transporte otelhttp propaga el contexto de traza (traceparent) al servicio.
type HTTPDirectory struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPDirectory construye el cliente. baseURL sin barra final, ej. http://localhost:8081/product-service.
func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPDirectory{
		baseURL:    baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// productPayload forma del producto en el servicio externo (camelCase).
type productPayload struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	CategoryID int64           `json:"categoryId"`
	Category   *categoryRef    `json:"category,omitempty"`
	Unit       string          `json:"unit"`
	Price      decimal.Decimal `json:"price"`
}

type categoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (p productPayload) toEntity() *entity.Product {
	out := &entity.Product{
		ID:         p.ID,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Unit:       p.Unit,
		Price:      p.Price,
	}
	if p.Category != nil {
		out.Category = p.Category.Name
		if out.CategoryID == 0 {
			out.CategoryID = p.Category.ID
		}
	}
	return out
}

// GetByID obtiene un producto. 404 => domain.ErrNotFound; cualquier otro fallo => domain.ErrServiceUnavailable.
func (d *HTTPDirectory) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := otel.Tracer("productdir").Start(ctx, "productdir.get_by_id")
	span.SetAttributes(attribute.Int64("product.id", id))
	defer span.End()

	var payload productPayload
	status, err := d.getJSON(ctx, productsPath+"/"+strconv.FormatInt(id, 10), &payload)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	p := payload.toEntity()
	if p.ID == 0 {
		p.ID = id
	}
	return p, nil
}

// ListAll obtiene todos los productos indexados por id.
func (d *HTTPDirectory) ListAll(ctx context.Context) (map[int64]*entity.Product, error) {
	ctx, span := otel.Tracer("productdir").Start(ctx, "productdir.list_all")
	defer span.End()

	var payload []productPayload
	if _, err := d.getJSON(ctx, productsPath, &payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	out := make(map[int64]*entity.Product, len(payload))
	for _, p := range payload {
		out[p.ID] = p.toEntity()
	}
	span.SetAttributes(attribute.Int("product.count", len(out)))
	return out, nil
}

// getJSON hace GET y decodifica el cuerpo si el status es 200. Devuelve el status recibido (0 si no hubo respuesta).
func (d *HTTPDirectory) getJSON(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: crear request: %v", domain.ErrServiceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: servicio de productos: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return resp.StatusCode, fmt.Errorf("%w: servicio de productos respondió %d", domain.ErrServiceUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: respuesta inválida del servicio de productos: %v", domain.ErrServiceUnavailable, err)
	}
	return resp.StatusCode, nil
}

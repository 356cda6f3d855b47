package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
)

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "0", formatQty(0))
	assert.Equal(t, "999", formatQty(999))
	assert.Equal(t, "25.000", formatQty(25000))
	assert.Equal(t, "1.000.000", formatQty(1000000))
	assert.Equal(t, "-1.500", formatQty(-1500))
}

func TestFormatPeriod(t *testing.T) {
	assert.Equal(t, "2024-03", formatPeriod("202403"))
	assert.Equal(t, "x", formatPeriod("x"))
}

func TestRenderStockCard(t *testing.T) {
	r := NewStockCardRenderer("stock-service")
	product := &entity.Product{ID: 7, Name: "Tuerca", Category: "Ferreteria", Unit: "UN"}
	periods := []*entity.StockPeriod{
		{ProductID: 7, Period: inventory.MustParsePeriod("202401"), Inputs: 100, CurrentBalance: 100},
		{ProductID: 7, Period: inventory.MustParsePeriod("202402"), PreviousBalance: 100, Outputs: 30, CurrentBalance: 70},
	}

	doc, err := r.RenderStockCard(context.Background(), product, periods, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotEmpty(t, doc)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestRenderStockCard_SinProducto(t *testing.T) {
	_, err := NewStockCardRenderer("x").RenderStockCard(context.Background(), nil, nil, time.Now())
	assert.Error(t, err)
}

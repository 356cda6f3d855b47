// Package pdf genera la tarjeta de kardex de un producto: un renglón por mes con
// saldo anterior, entradas, salidas y saldo final.
//
//	┌───────────────────────────────────────────────────────────┐
//	│  TARJETA DE KARDEX           │  Generado: fecha            │
//	│  Producto + categoría + unidad                             │
//	│  ───────────────────────────────────────────────────────  │
//	│  Periodo | Saldo anterior | Entradas | Salidas | Saldo     │
//	│  ───────────────────────────────────────────────────────  │
//	│  Totales del rango                                         │
//	└───────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appinventory "github.com/rfranzoia/cloud-ready-stock/internal/application/inventory"
	"github.com/rfranzoia/cloud-ready-stock/internal/domain/entity"
)

var _ appinventory.StockReportRenderer = (*StockCardRenderer)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 244, Blue: 248}
)

// StockCardRenderer implementa inventory.StockReportRenderer usando Maroto v2.
type StockCardRenderer struct {
	service string
}

// NewStockCardRenderer construye el renderer; service aparece como autor del PDF.
func NewStockCardRenderer(service string) *StockCardRenderer {
	return &StockCardRenderer{service: service}
}

// RenderStockCard genera el PDF con la cadena de saldos (ordenada por periodo) y devuelve sus bytes.
func (r *StockCardRenderer) RenderStockCard(
	_ context.Context,
	product *entity.Product,
	periods []*entity.StockPeriod,
	generatedAt time.Time,
) ([]byte, error) {
	if product == nil {
		return nil, fmt.Errorf("pdf: producto requerido")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Tarjeta de kardex", true).
		WithAuthor(r.service, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(product, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(periods)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(periods))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(product *entity.Product, generatedAt time.Time) core.Row {
	details := "Unidad: " + nonEmpty(product.Unit, "-")
	if product.Category != "" {
		details = "Categoría: " + product.Category + "   |   " + details
	}
	return row.New(20).Add(
		col.New(8).Add(
			text.New("TARJETA DE KARDEX", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary,
			}),
			text.New(fmt.Sprintf("#%d  %s", product.ID, product.Name), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 7,
			}),
			text.New(details, props.Text{Size: 8, Top: 13, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.Format("2006-01-02 15:04"), props.Text{
				Size: 8, Align: align.Right, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Periodo", 2, align.Center),
		h("Saldo anterior", 3, align.Right),
		h("Entradas", 2, align.Right),
		h("Salidas", 2, align.Right),
		h("Saldo final", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableRows(periods []*entity.StockPeriod) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	rows := make([]core.Row, 0, len(periods))
	for i, s := range periods {
		r := row.New(6).Add(
			cell(formatPeriod(s.Period.String()), 2, align.Center),
			cell(formatQty(s.PreviousBalance), 3, align.Right),
			cell(formatQty(s.Inputs), 2, align.Right),
			cell(formatQty(s.Outputs), 2, align.Right),
			cell(formatQty(s.CurrentBalance), 3, align.Right),
		)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		rows = append(rows, r)
	}
	return rows
}

func totalsRow(periods []*entity.StockPeriod) core.Row {
	var inputs, outputs, final int64
	for _, s := range periods {
		inputs += s.Inputs
		outputs += s.Outputs
	}
	if n := len(periods); n > 0 {
		final = periods[n-1].CurrentBalance
	}
	bold := func(s string, size int) core.Col {
		return col.New(size).Add(text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1, Right: 1, Color: colorPrimary,
		}))
	}
	return row.New(8).Add(
		bold("Totales:", 5),
		bold(formatQty(inputs), 2),
		bold(formatQty(outputs), 2),
		bold(formatQty(final), 3),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatPeriod muestra YYYYMM como YYYY-MM.
func formatPeriod(s string) string {
	if len(s) != 6 {
		return s
	}
	return s[:4] + "-" + s[4:]
}

// formatQty inserta puntos de miles: 25000 → "25.000", -1500 → "-1.500".
func formatQty(v int64) string {
	s := strconv.FormatInt(v, 10)
	sign := ""
	if v < 0 {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}

package inventory

import (
	"fmt"
	"strconv"
	"time"
)

// periodLayout es el formato del token de periodo (YYYYMM), ordenable como texto.
const periodLayout = "200601"

// Period representa un mes calendario (año-mes), la granularidad del kardex.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod construye un periodo normalizando meses fuera de rango (13 => enero del año siguiente).
func NewPeriod(year int, month time.Month) Period {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Year: t.Year(), Month: t.Month()}
}

// PeriodOf devuelve el periodo al que pertenece una fecha.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod interpreta un token YYYYMM.
func ParsePeriod(s string) (Period, error) {
	if len(s) != 6 {
		return Period{}, fmt.Errorf("periodo %q: se espera formato YYYYMM", s)
	}
	if _, err := strconv.Atoi(s); err != nil {
		return Period{}, fmt.Errorf("periodo %q: se espera formato YYYYMM", s)
	}
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("periodo %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

// MustParsePeriod es ParsePeriod para constantes conocidas; entra en pánico si el token es inválido.
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Period) String() string {
	return fmt.Sprintf("%04d%02d", p.Year, int(p.Month))
}

// Start devuelve el primer día del periodo (UTC).
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) Next() Period     { return p.AddMonths(1) }
func (p Period) Previous() Period { return p.AddMonths(-1) }

// AddMonths desplaza el periodo n meses (n puede ser negativo).
func (p Period) AddMonths(n int) Period {
	return NewPeriod(p.Year, p.Month+time.Month(n))
}

// Compare devuelve -1, 0 o 1 según el orden cronológico.
func (p Period) Compare(o Period) int {
	a, b := p.index(), o.index()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (p Period) Before(o Period) bool { return p.Compare(o) < 0 }
func (p Period) After(o Period) bool  { return p.Compare(o) > 0 }
func (p Period) IsZero() bool         { return p.Year == 0 && p.Month == 0 }

func (p Period) index() int {
	return p.Year*12 + int(p.Month) - 1
}

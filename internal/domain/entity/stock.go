package entity

import (
	"time"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
)

// StockPeriod representa el saldo de un producto en un mes (clave: producto + periodo).
// Los registros de un producto forman una cadena ordenada: PreviousBalance de un periodo
// debe coincidir con CurrentBalance del periodo anterior.
type StockPeriod struct {
	ProductID       int64
	Period          inventory.Period
	PreviousBalance int64
	Inputs          int64
	Outputs         int64
	CurrentBalance  int64
	UpdatedAt       time.Time
}

// SameBalances indica si dos registros tienen los mismos saldos y cantidades.
func (s *StockPeriod) SameBalances(o *StockPeriod) bool {
	return s.PreviousBalance == o.PreviousBalance &&
		s.Inputs == o.Inputs &&
		s.Outputs == o.Outputs &&
		s.CurrentBalance == o.CurrentBalance
}

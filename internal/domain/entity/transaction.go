package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de inventario.
const (
	TransactionTypeInput  = "INPUT"  // entrada
	TransactionTypeOutput = "OUTPUT" // salida
)

// ValidTransactionType indica si el tipo es INPUT u OUTPUT.
func ValidTransactionType(t string) bool {
	return t == TransactionTypeInput || t == TransactionTypeOutput
}

// Transaction representa una entrada o salida de inventario. Solo se crea o elimina, nunca se actualiza.
type Transaction struct {
	ID        int64
	Date      time.Time // solo fecha (UTC, 00:00)
	Type      string    // INPUT, OUTPUT
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
	CreatedAt time.Time
}

package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrServiceUnavailable  = errors.New("servicio no disponible")
	ErrConstraintViolation = errors.New("violación de restricción")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
)

// InsufficientStockError detalla un retiro que excede el saldo disponible del periodo.
// Coincide con ErrInsufficientStock y con ErrInvalidInput vía errors.Is.
type InsufficientStockError struct {
	ProductID int64
	Period    string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %d periodo %s disponible %d solicitado %d",
		e.ProductID, e.Period, e.Available, e.Requested)
}

// Is permite que el error se trate como solicitud inválida en las capas superiores.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock || target == ErrInvalidInput
}

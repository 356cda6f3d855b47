package inventory

import "fmt"

// ClampPolicy define cómo se deriva el saldo final a partir de saldo anterior + entradas - salidas.
type ClampPolicy string

const (
	// ClampNonNegative recorta a cero los saldos negativos: max(suma, 0).
	ClampNonNegative ClampPolicy = "non_negative"
	// ClampLegacy reproduce el cálculo histórico min(suma, 0): cualquier suma positiva queda en 0.
	ClampLegacy ClampPolicy = "legacy"
)

// ParseClampPolicy valida el nombre de la política. Vacío equivale a ClampNonNegative.
func ParseClampPolicy(s string) (ClampPolicy, error) {
	switch ClampPolicy(s) {
	case "", ClampNonNegative:
		return ClampNonNegative, nil
	case ClampLegacy:
		return ClampLegacy, nil
	}
	return "", fmt.Errorf("política de saldo desconocida: %q", s)
}

// Apply aplica la política a una suma ya calculada.
func (p ClampPolicy) Apply(sum int64) int64 {
	if p == ClampLegacy {
		return min(sum, 0)
	}
	return max(sum, 0)
}

// Balance calcula el saldo final de un periodo (servicio de dominio).
// SaldoFinal = clamp(SaldoAnterior + Entradas - Salidas)
func (p ClampPolicy) Balance(previous, inputs, outputs int64) int64 {
	return p.Apply(previous + inputs - outputs)
}

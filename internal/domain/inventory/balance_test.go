package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfranzoia/cloud-ready-stock/internal/domain/inventory"
)

func TestClampPolicy_Balance(t *testing.T) {
	cases := []struct {
		name                      string
		policy                    inventory.ClampPolicy
		previous, inputs, outputs int64
		want                      int64
	}{
		{"no negativo positivo", inventory.ClampNonNegative, 100, 20, 50, 70},
		{"no negativo recorta", inventory.ClampNonNegative, 10, 0, 30, 0},
		{"legacy positivo queda en cero", inventory.ClampLegacy, 100, 20, 50, 0},
		{"legacy conserva negativo", inventory.ClampLegacy, 10, 0, 30, -20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.policy.Balance(tc.previous, tc.inputs, tc.outputs))
		})
	}
}

func TestParseClampPolicy(t *testing.T) {
	p, err := inventory.ParseClampPolicy("")
	require.NoError(t, err)
	assert.Equal(t, inventory.ClampNonNegative, p)

	p, err = inventory.ParseClampPolicy("legacy")
	require.NoError(t, err)
	assert.Equal(t, inventory.ClampLegacy, p)

	_, err = inventory.ParseClampPolicy("max")
	assert.Error(t, err)
}

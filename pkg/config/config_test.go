package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfranzoia/cloud-ready-stock/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "non_negative", cfg.Ledger.ClampPolicy)
	assert.Equal(t, 120, cfg.Ledger.MaxLookbackMonths)
	assert.True(t, cfg.Ledger.SyncOnDelete, "por defecto se reconcilia después de eliminar")
	assert.False(t, cfg.Ledger.CarryPriorYear)
	assert.Equal(t, 5*time.Second, cfg.ProductService.Timeout)
}

func TestLoad_LedgerDesdeEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("LEDGER_CLAMP_POLICY", "legacy")
	t.Setenv("LEDGER_MAX_LOOKBACK_MONTHS", "24")
	t.Setenv("LEDGER_SYNC_ON_DELETE", "false")
	t.Setenv("PRODUCT_SERVICE_URL", "http://products:8081/product-service/")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "legacy", cfg.Ledger.ClampPolicy)
	assert.Equal(t, 24, cfg.Ledger.MaxLookbackMonths)
	assert.False(t, cfg.Ledger.SyncOnDelete)
	assert.Equal(t, "http://products:8081/product-service", cfg.ProductService.BaseURL,
		"la barra final se elimina")
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/stock?sslmode=disable", c.ConnectionString())
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"biterush/internal/config"
	"biterush/internal/models"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "s3cret")

	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, config.StoreSQL, cfg.OrderStore)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.OrdersPageSize)
	assert.False(t, cfg.StrictStatus)
	assert.False(t, cfg.OptimisticLocks)
	assert.True(t, cfg.TaxRate.IsZero())
	assert.Equal(t, "45", cfg.DeliveryFees[models.DeliverySaver].String())
	assert.Equal(t, "45", cfg.DeliveryFees[models.DeliveryStandard].String())
	assert.Equal(t, "60", cfg.DeliveryFees[models.DeliveryPriority].String())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("ORDER_STORE", "Memory")
	t.Setenv("DELIVERY_FEE_PRIORITY", "75.5")
	t.Setenv("TAX_RATE", "7.5")
	t.Setenv("STRICT_STATUS_TRANSITIONS", "true")
	t.Setenv("TOKEN_TTL", "1h")

	v := viper.New()
	v.AutomaticEnv()
	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, config.StoreMemory, cfg.OrderStore)
	assert.Equal(t, "75.5", cfg.DeliveryFees[models.DeliveryPriority].String())
	assert.Equal(t, "7.5", cfg.TaxRate.String())
	assert.True(t, cfg.StrictStatus)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET: file-secret\nORDERS_PAGE_SIZE: 25\n"), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, 25, cfg.OrdersPageSize)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
		want string
	}{
		{"missing secret", map[string]any{}, "JWT_SECRET is required"},
		{"bad driver", map[string]any{"DATABASE_DRIVER": "oracle"}, "DATABASE_DRIVER"},
		{"bad store", map[string]any{"ORDER_STORE": "redis"}, "ORDER_STORE"},
		{"negative fee", map[string]any{"DELIVERY_FEE_SAVER": "-1"}, "DELIVERY_FEE_SAVER must not be negative"},
		{"garbage tax", map[string]any{"TAX_RATE": "abc"}, "TAX_RATE"},
		{"tax over 100", map[string]any{"TAX_RATE": "150"}, "TAX_RATE must be a percentage"},
		{"page size", map[string]any{"ORDERS_PAGE_SIZE": 500}, "ORDERS_PAGE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			if tt.name != "missing secret" {
				v.Set("JWT_SECRET", "s3cret")
			}
			for k, val := range tt.set {
				v.Set(k, val)
			}

			_, err := config.Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

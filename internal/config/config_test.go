package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"crm/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.Equal(t, 10, cfg.LowStockIncrement)
	assert.Equal(t, 7*24*time.Hour, cfg.ReminderWindow)
	assert.Equal(t, "/tmp/crm_heartbeat_log.txt", cfg.HeartbeatLog)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("LOW_STOCK_THRESHOLD", "25")
	t.Setenv("REMINDER_WINDOW", "48h")

	v, err := config.New()
	require.NoError(t, err)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 25, cfg.LowStockThreshold)
	assert.Equal(t, 48*time.Hour, cfg.ReminderWindow)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT: \":9999\"\nLOW_STOCK_INCREMENT: 5\n"), 0o600))
	t.Setenv("CRM_CONFIG", path)

	v, err := config.New()
	require.NoError(t, err)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.AppPort)
	assert.Equal(t, 5, cfg.LowStockIncrement)
}

func TestLoad_Invalid(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DATABASE_DRIVER", "oracle")
	_, err := config.Load(v)
	assert.ErrorContains(t, err, "unsupported database driver")

	v = viper.New()
	config.SetDefaults(v)
	v.Set("LOW_STOCK_INCREMENT", 0)
	_, err = config.Load(v)
	assert.ErrorContains(t, err, "LOW_STOCK_INCREMENT")

	v = viper.New()
	config.SetDefaults(v)
	v.Set("GRAPHQL_TIMEOUT", "0s")
	_, err = config.Load(v)
	assert.ErrorContains(t, err, "GRAPHQL_TIMEOUT")
}

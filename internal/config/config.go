// Package config loads CRM settings from the environment, an optional config
// file and command-line flags through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the settings shared by the API server and the job runner.
type Config struct {
	AppPort string
	AppEnv  string

	DatabaseDriver string
	DatabaseDSN    string

	RabbitMQURL string

	GraphQLURL     string
	GraphQLTimeout time.Duration

	LowStockThreshold int
	LowStockIncrement int
	ReminderWindow    time.Duration

	HeartbeatLog string
	LowStockLog  string
	RemindersLog string
	ReportLog    string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "crm.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("GRAPHQL_URL", "http://localhost:8000/graphql")
	v.SetDefault("GRAPHQL_TIMEOUT", 10*time.Second)
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("LOW_STOCK_INCREMENT", 10)
	v.SetDefault("REMINDER_WINDOW", 7*24*time.Hour)
	v.SetDefault("HEARTBEAT_LOG", "/tmp/crm_heartbeat_log.txt")
	v.SetDefault("LOW_STOCK_LOG", "/tmp/low_stock_updates_log.txt")
	v.SetDefault("REMINDERS_LOG", "/tmp/order_reminders_log.txt")
	v.SetDefault("REPORT_LOG", "/tmp/crm_report_log.txt")
}

// New returns a viper instance with defaults, environment binding and, when
// CRM_CONFIG names a file, that file merged in.
func New() (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("CRM_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return v, nil
}

// Load reads a Config out of v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:           v.GetString("APP_PORT"),
		AppEnv:            v.GetString("APP_ENV"),
		DatabaseDriver:    strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		GraphQLURL:        v.GetString("GRAPHQL_URL"),
		GraphQLTimeout:    v.GetDuration("GRAPHQL_TIMEOUT"),
		LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
		LowStockIncrement: v.GetInt("LOW_STOCK_INCREMENT"),
		ReminderWindow:    v.GetDuration("REMINDER_WINDOW"),
		HeartbeatLog:      v.GetString("HEARTBEAT_LOG"),
		LowStockLog:       v.GetString("LOW_STOCK_LOG"),
		RemindersLog:      v.GetString("REMINDERS_LOG"),
		ReportLog:         v.GetString("REPORT_LOG"),
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres", "memory":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	if cfg.LowStockIncrement <= 0 {
		return Config{}, fmt.Errorf("LOW_STOCK_INCREMENT must be positive, got %d", cfg.LowStockIncrement)
	}
	if cfg.GraphQLTimeout <= 0 {
		return Config{}, fmt.Errorf("GRAPHQL_TIMEOUT must be positive, got %s", cfg.GraphQLTimeout)
	}
	if cfg.ReminderWindow <= 0 {
		return Config{}, fmt.Errorf("REMINDER_WINDOW must be positive, got %s", cfg.ReminderWindow)
	}
	return cfg, nil
}

package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage.Mode)
	assert.Equal(t, "data/history.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 1024, cfg.Cache.MaxEntries)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, manager.Validate())
}

func TestManagerEnvOverride(t *testing.T) {
	t.Setenv("VITALS_SERVER_PORT", "9090")
	t.Setenv("VITALS_LOGGING_LEVEL", "debug")

	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Invalid port", func(c *Config) { c.Server.Port = -1 }},
		{"Invalid storage mode", func(c *Config) { c.Storage.Mode = "cassandra" }},
		{"Postgres without host", func(c *Config) {
			c.Storage.Mode = StoragePostgres
			c.Database.Host = ""
		}},
		{"SQLite without path", func(c *Config) {
			c.Storage.Mode = StorageSQLite
			c.Storage.SQLitePath = ""
		}},
		{"Zero cache entries", func(c *Config) { c.Cache.MaxEntries = 0 }},
		{"Invalid log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewManager()
			require.NoError(t, err)

			tt.mutate(manager.GetConfig())
			assert.Error(t, manager.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	logger = NewLogger(LoggingConfig{Level: "warn", Format: "text"})
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	_, ok = logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)

	// Unknown level falls back to info.
	logger = NewLogger(LoggingConfig{Level: "shout", Format: "json"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

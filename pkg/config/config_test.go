package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "payroll-service", cfg.ServiceName)
	assert.Equal(t, "8083", cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "usd", cfg.Gateway.Currency)
	assert.Equal(t, 15*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "users", cfg.Directory.Table)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "sk_test_123", cfg.Gateway.StripeSecretKey)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CLIENT_URL=https://hr.example.com\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CLIENT_URL") })

	file := filepath.Join(dir, "payroll.yaml")
	require.NoError(t, os.WriteFile(file, []byte("log_level: debug\ngateway:\n  currency: eur\n"), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "https://hr.example.com", cfg.Gateway.ClientURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "eur", cfg.Gateway.Currency)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Gateway.StripeSecretKey = ""
	assert.ErrorContains(t, cfg.Validate(), "STRIPE_SECRET_KEY")

	cfg.Gateway.Enabled = false
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.ErrorContains(t, cfg.Validate(), "unsupported database driver")
}

func TestDirectoryDatabaseConfig(t *testing.T) {
	cfg := &Config{}
	_, ok := cfg.DirectoryDatabaseConfig()
	assert.False(t, ok)

	cfg.Directory.Host = "users-db"
	cfg.Directory.Name = "userdb"
	dbCfg, ok := cfg.DirectoryDatabaseConfig()
	require.True(t, ok)
	assert.Equal(t, "users-db", dbCfg.Host)
	assert.Equal(t, "userdb", dbCfg.DBName)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

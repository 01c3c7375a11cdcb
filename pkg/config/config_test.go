package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "5")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_MAX_CONNS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, 5*time.Second, cfg.Reports.CacheTTL)
	assert.False(t, cfg.App.MetricsEnabled)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, int32(8), cfg.DB.MaxConns)
	assert.Equal(t, 5, cfg.DB.ConnectRetries)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/stock?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}

func TestLoad_AdminRoles(t *testing.T) {
	t.Setenv("JWT_ADMIN_ROLES", " admin, gerente ,,")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "gerente"}, cfg.JWT.AdminRoles)
	assert.Empty(t, splitList(" , "))
}

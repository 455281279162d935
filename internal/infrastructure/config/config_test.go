package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "propcore", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "propcore", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 30, cfg.Engine.LateAfterDays)
		assert.Equal(t, 30*24*time.Hour, cfg.Engine.LateWindow())
		assert.Equal(t, 5, cfg.Outbox.MaxRetries)
		assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
		assert.Equal(t, "dead-letters/", cfg.Storage.Prefix)
	})

	t.Run("loads values from environment variables with PROPCORE prefix", func(t *testing.T) {
		t.Setenv("PROPCORE_APP_NAME", "test-app")
		t.Setenv("PROPCORE_APP_PORT", "9000")
		t.Setenv("PROPCORE_DATABASE_HOST", "testdb.local")
		t.Setenv("PROPCORE_DATABASE_PORT", "5433")
		t.Setenv("PROPCORE_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("PROPCORE_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("PROPCORE_ENGINE_LATE_AFTER_DAYS", "45")
		t.Setenv("PROPCORE_OUTBOX_MAX_RETRIES", "8")
		t.Setenv("PROPCORE_SCHEDULER_LATE_SWEEP_INTERVAL", "30m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 45, cfg.Engine.LateAfterDays)
		assert.Equal(t, 8, cfg.Outbox.MaxRetries)
		assert.Equal(t, 30*time.Minute, cfg.Scheduler.LateSweepInterval)
	})

	t.Run("rejects idle connections above the open limit", func(t *testing.T) {
		t.Setenv("PROPCORE_DATABASE_MAX_OPEN_CONNS", "5")
		t.Setenv("PROPCORE_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})
}

func TestValidate_Production(t *testing.T) {
	base := func() *Config {
		cfg := &Config{App: AppConfig{Env: "production"}}
		applyDefaults(cfg)
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		return cfg
	}

	t.Run("valid production config", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("short jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.JWT.Secret = "short"
		assert.ErrorContains(t, cfg.validate(), "jwt.secret")
	})

	t.Run("ssl disabled", func(t *testing.T) {
		cfg := base()
		cfg.Database.SSLMode = "disable"
		assert.ErrorContains(t, cfg.validate(), "sslmode")
	})

	t.Run("auto migrate", func(t *testing.T) {
		cfg := base()
		cfg.Database.AutoMigrate = true
		assert.ErrorContains(t, cfg.validate(), "auto_migrate")
	})

	t.Run("wildcard cors", func(t *testing.T) {
		cfg := base()
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.ErrorContains(t, cfg.validate(), "cors_allow_origins")
	})
}

func TestValidate_Storage(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Storage.Enabled = true

	assert.ErrorContains(t, cfg.validate(), "storage.bucket")

	cfg.Storage.Bucket = "propcore-archive"
	assert.NoError(t, cfg.validate())
}

func TestValidate_SamplingRatio(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Telemetry.SamplingRatio = 1.5

	assert.ErrorContains(t, cfg.validate(), "sampling_ratio")
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "app",
		Password: "p@ss/word",
		DBName:   "propcore",
		SSLMode:  "require",
	}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/propcore?sslmode=require", d.DSN())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "recruit.db", cfg.Database.Path)
	assert.Equal(t, "file:recruit.db?mode=ro", cfg.Database.DSN())
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"*"}, cfg.Web.AllowOrigins)
}

func TestSQLiteDSNEscapesPath(t *testing.T) {
	cases := map[string]string{
		"/srv/data/recruit.db": "file:/srv/data/recruit.db?mode=ro",
		"data/a?b#c.db":        "file:data/a%3Fb%23c.db?mode=ro",
		"my data/100%.db":      "file:my%20data/100%25.db?mode=ro",
	}
	for path, want := range cases {
		d := DatabaseConfig{Driver: DriverSQLite, Path: path}
		assert.Equal(t, want, d.DSN(), path)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8081
database:
  driver: postgres
  host: db.internal
  database: insights
  user: reader
  password: secret
  queryTimeout: 3s
redis:
  enabled: true
  cacheTTL: 1m
kafka:
  enabled: true
  brokers: [k1:9092, k2:9092]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 3*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "host=db.internal port=5432 user=reader password=secret dbname=insights sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	// Untouched sections keep their defaults.
	assert.Equal(t, "cache-invalidate", cfg.Kafka.Topics.CacheInvalidate)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CI_SERVER_PORT", "7000")
	t.Setenv("CI_DATABASE_PATH", "/data/customers.db")
	t.Setenv("CI_REDIS_ENABLED", "true")
	t.Setenv("CI_KAFKA_BROKERS", "a:1,b:2")
	t.Setenv("CI_WEB_ALLOW_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("CI_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/data/customers.db", cfg.Database.Path)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Web.AllowOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CI_DATABASE_PATH=from-dotenv.db\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CI_DATABASE_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Database.Path)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"empty sqlite path", func(c *Config) { c.Database.Path = "" }},
		{"postgres without host", func(c *Config) {
			c.Database.Driver = DriverPostgres
			c.Database.Host = ""
		}},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"kafka without brokers", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

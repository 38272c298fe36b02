package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":8080"
database:
  host: "localhost"
  port: 5432
  user: "postgres"
  password: "postgres"
  name: "faresearch"
  ssl_mode: "disable"
kafka:
  brokers: ["localhost:9092"]
  journeys_topic: "journeys"
provider:
  fares_base_url: "https://example.com/api/farfnd/v4"
  timeout_seconds: 15
  price_ceiling: 500
search:
  max_options_per_segment: 3
`)

	cfg, err := LoadConfig(path)

	assert.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3, cfg.Search.MaxOptionsPerSegment)
	assert.Equal(t, 15, cfg.Provider.TimeoutSecs)
	assert.Equal(t, 500.0, cfg.Provider.PriceCeiling)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":8080"
`)

	cfg, err := LoadConfig(path)

	assert.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.MaxOptionsPerSegment)
	assert.Equal(t, 10, cfg.Provider.TimeoutSecs)
	assert.Equal(t, 2000.0, cfg.Provider.PriceCeiling)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig("does-not-exist.yaml")

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, `http: [not a mapping`)

	cfg, err := LoadConfig(path)

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "secret", Name: "faresearch", SSLMode: "disable"}

	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=faresearch sslmode=disable", cfg.DSN())
}

func TestDatabaseConfig_DSN_EnvOverride(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "from-env")

	cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "secret", Name: "faresearch", SSLMode: "disable"}

	assert.Contains(t, cfg.DSN(), "password=from-env")
}

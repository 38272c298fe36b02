package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlightRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewFlightRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewAirportRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewAirportRepository(pool)
	assert.NotNil(t, repo)
}

// Идемпотентность Upsert держится на уникальном бизнес-ключе из миграции:
// колонки в ON CONFLICT обязаны совпадать с ограничением uq_flight_business_key.
func TestUpsertFlightSQL_ConflictTargetMatchesMigration(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_init.sql"))
	require.NoError(t, err)

	assert.Contains(t, string(data), "CONSTRAINT uq_flight_business_key UNIQUE ("+flightBusinessKey+")")
	assert.Contains(t, upsertFlightSQL, "ON CONFLICT ("+flightBusinessKey+")")
	assert.Contains(t, upsertFlightSQL, "DO UPDATE SET price = EXCLUDED.price")
}

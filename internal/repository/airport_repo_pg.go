package repository

import (
	"context"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AirportRepository interface {
	// ConnectedAirports returns the codes reachable by a known direct route
	// from the given airport. An airport with no outgoing edges yields an
	// empty slice, not an error.
	ConnectedAirports(ctx context.Context, code string) ([]string, error)
	// AirportsForLocation resolves a location name or country to airport codes.
	AirportsForLocation(ctx context.Context, nameOrCountry string) ([]string, error)
	LocationByAirport(ctx context.Context, code string) (*domain.Location, error)
	ListAirportCodes(ctx context.Context) ([]string, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)

	// Reference-data inserts used by the seed tool. Duplicate keys are
	// silently absorbed.
	InsertLocation(ctx context.Context, loc domain.Location) error
	InsertAirport(ctx context.Context, code, locationName, locationCountry string) error
	InsertConnection(ctx context.Context, originCode, destinationCode string) error
}

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) AirportRepository {
	return &PGAirportRepository{db: db}
}

func (r *PGAirportRepository) ConnectedAirports(ctx context.Context, code string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT destination_code FROM airport_connections WHERE origin_code = $1 ORDER BY destination_code`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCodes(rows)
}

func (r *PGAirportRepository) AirportsForLocation(ctx context.Context, nameOrCountry string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT a.code FROM airports a
		JOIN locations l ON l.id = a.location_id
		WHERE l.name = $1 OR l.country = $1
		ORDER BY a.code`, nameOrCountry)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCodes(rows)
}

func (r *PGAirportRepository) LocationByAirport(ctx context.Context, code string) (*domain.Location, error) {
	row := r.db.QueryRow(ctx, `SELECT l.name, l.country FROM airports a
		JOIN locations l ON l.id = a.location_id
		WHERE a.code = $1`, code)
	var loc domain.Location
	if err := row.Scan(&loc.Name, &loc.Country); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "location for airport", Key: code}
		}
		return nil, err
	}
	return &loc, nil
}

func (r *PGAirportRepository) ListAirportCodes(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT code FROM airports ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCodes(rows)
}

func (r *PGAirportRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.db.Query(ctx, `SELECT name, country FROM locations ORDER BY country, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]domain.Location, 0)
	for rows.Next() {
		var loc domain.Location
		if err := rows.Scan(&loc.Name, &loc.Country); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (r *PGAirportRepository) InsertLocation(ctx context.Context, loc domain.Location) error {
	_, err := r.db.Exec(ctx, `INSERT INTO locations (name, country) VALUES ($1, $2) ON CONFLICT (name, country) DO NOTHING`, loc.Name, loc.Country)
	return err
}

func (r *PGAirportRepository) InsertAirport(ctx context.Context, code, locationName, locationCountry string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO airports (code, location_id)
		SELECT $1, l.id FROM locations l WHERE l.name = $2 AND l.country = $3
		ON CONFLICT (code) DO NOTHING`, code, locationName, locationCountry)
	return err
}

func (r *PGAirportRepository) InsertConnection(ctx context.Context, originCode, destinationCode string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO airport_connections (origin_code, destination_code) VALUES ($1, $2) ON CONFLICT DO NOTHING`, originCode, destinationCode)
	return err
}

func scanCodes(rows pgx.Rows) ([]string, error) {
	codes := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

var _ AirportRepository = (*PGAirportRepository)(nil)

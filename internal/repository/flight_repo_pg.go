package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	// Upsert inserts the flight or, on a business-key collision, refreshes the
	// mutable columns. Either way it returns the row id, so repeating the call
	// with identical input is safe.
	Upsert(ctx context.Context, flight *domain.Flight) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// PurgeDepartedUnlinked deletes flights that already departed before the
	// deadline and are referenced by no journey.
	PurgeDepartedUnlinked(ctx context.Context, deadline time.Time) (int64, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

// flightBusinessKey mirrors the uq_flight_business_key constraint in
// migrations/0001_init.sql. ON CONFLICT targets it by column list, so both
// must name the same columns in the same order.
const flightBusinessKey = "from_airport, to_airport, departure_time, arrival_time, flight_number"

const upsertFlightSQL = `INSERT INTO flights (flight_number, from_airport, to_airport, departure_time, arrival_time, duration, aircompany, price, sold_out, unavailable, inserted_on, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
	ON CONFLICT (` + flightBusinessKey + `)
	DO UPDATE SET price = EXCLUDED.price, sold_out = EXCLUDED.sold_out, unavailable = EXCLUDED.unavailable, updated_at = now()
	RETURNING id`

func (r *PGFlightRepository) Upsert(ctx context.Context, flight *domain.Flight) (int64, error) {
	row := r.db.QueryRow(ctx, upsertFlightSQL,
		flight.FlightNumber, flight.FromAirport, flight.ToAirport, flight.DepartureTime, flight.ArrivalTime, flight.Duration, flight.Aircompany, flight.Price, flight.SoldOut, flight.Unavailable)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	flight.ID = id
	return id, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT id, flight_number, from_airport, to_airport, departure_time, arrival_time, duration, aircompany, price, sold_out, unavailable, inserted_on, updated_at FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.ArrivalTime, &f.Duration, &f.Aircompany, &f.Price, &f.SoldOut, &f.Unavailable, &f.InsertedOn, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) PurgeDepartedUnlinked(ctx context.Context, deadline time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM flights f
		WHERE f.departure_time < $1
		AND NOT EXISTS (SELECT 1 FROM journey_flights jf WHERE jf.flight_id = f.id)`, deadline)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)

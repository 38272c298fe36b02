package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JourneyRepository interface {
	// Create always inserts a new row. Journeys are intentionally not
	// deduplicated by content.
	Create(ctx context.Context, journey *domain.Journey) (int64, error)
	// LinkFlight records one leg of a journey. legOrder follows construction
	// order but reads re-derive ordering from departure time.
	LinkFlight(ctx context.Context, journeyID, flightID int64, legOrder int) error
	// StoredJourneys returns aggregates for journeys inside the period whose
	// legs touch a location matching fromLoc (and toLoc, when given, by name
	// or country). A leg touches a location from either end, so journeys
	// running in both directions between the two locations come back.
	StoredJourneys(ctx context.Context, fromLoc, toLoc string, periodStart, periodEnd time.Time) ([]domain.JourneyAggregate, error)
	// JourneyFlights returns the flights of one journey ordered by departure.
	JourneyFlights(ctx context.Context, journeyID int64) ([]domain.Flight, error)
}

type PGJourneyRepository struct {
	db *pgxpool.Pool
}

func NewJourneyRepository(db *pgxpool.Pool) JourneyRepository {
	return &PGJourneyRepository{db: db}
}

func (r *PGJourneyRepository) Create(ctx context.Context, journey *domain.Journey) (int64, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO journeys (persons, period_start, period_end, total_duration)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		journey.Persons, journey.PeriodStart, journey.PeriodEnd, journey.TotalDuration)
	if err := row.Scan(&journey.ID, &journey.CreatedAt); err != nil {
		return 0, err
	}
	return journey.ID, nil
}

func (r *PGJourneyRepository) LinkFlight(ctx context.Context, journeyID, flightID int64, legOrder int) error {
	_, err := r.db.Exec(ctx, `INSERT INTO journey_flights (journey_id, flight_id, leg_order) VALUES ($1, $2, $3)`, journeyID, flightID, legOrder)
	return err
}

const flightColumns = `f.id, f.flight_number, f.from_airport, f.to_airport, f.departure_time, f.arrival_time, f.duration, f.aircompany, f.price, f.sold_out, f.unavailable, f.inserted_on, f.updated_at`

// A leg touches a location from either end. A search origin-destination pair
// also stores return journeys running the opposite way under the same period;
// matching only departures would hide them from the read-back.
const storedJourneysSQL = `SELECT j.id, j.persons, j.period_start, j.period_end, ` + flightColumns + `
	FROM journeys j
	JOIN journey_flights jf ON jf.journey_id = j.id
	JOIN flights f ON f.id = jf.flight_id
	WHERE j.period_start <= $4 AND j.period_end >= $3
	AND EXISTS (
		SELECT 1 FROM journey_flights jf2
		JOIN flights f2 ON f2.id = jf2.flight_id
		JOIN airports a ON a.code IN (f2.from_airport, f2.to_airport)
		JOIN locations l ON l.id = a.location_id
		WHERE jf2.journey_id = j.id AND (l.name = $1 OR l.country = $1)
	)
	AND ($2 = '' OR EXISTS (
		SELECT 1 FROM journey_flights jf3
		JOIN flights f3 ON f3.id = jf3.flight_id
		JOIN airports a2 ON a2.code IN (f3.from_airport, f3.to_airport)
		JOIN locations l2 ON l2.id = a2.location_id
		WHERE jf3.journey_id = j.id AND (l2.name = $2 OR l2.country = $2)
	))
	ORDER BY j.id, f.departure_time`

func (r *PGJourneyRepository) StoredJourneys(ctx context.Context, fromLoc, toLoc string, periodStart, periodEnd time.Time) ([]domain.JourneyAggregate, error) {
	rows, err := r.db.Query(ctx, storedJourneysSQL, fromLoc, toLoc, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggregates []domain.JourneyAggregate
	var current *domain.JourneyAggregate
	for rows.Next() {
		var journeyID int64
		var persons int
		var pStart, pEnd time.Time
		var f domain.Flight
		if err := rows.Scan(&journeyID, &persons, &pStart, &pEnd,
			&f.ID, &f.FlightNumber, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.ArrivalTime, &f.Duration, &f.Aircompany, &f.Price, &f.SoldOut, &f.Unavailable, &f.InsertedOn, &f.UpdatedAt); err != nil {
			return nil, err
		}

		if current == nil || current.JourneyID != journeyID {
			if current != nil {
				aggregates = append(aggregates, *current)
			}
			current = &domain.JourneyAggregate{
				JourneyID:   journeyID,
				Persons:     persons,
				PeriodStart: pStart,
				PeriodEnd:   pEnd,
			}
		}
		current.Flights = append(current.Flights, f)
	}
	if current != nil {
		aggregates = append(aggregates, *current)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range aggregates {
		finalizeAggregate(&aggregates[i])
	}
	return aggregates, nil
}

// Reads re-derive leg ordering from departure time, not leg_order.
const journeyFlightsSQL = `SELECT ` + flightColumns + `
	FROM journey_flights jf
	JOIN flights f ON f.id = jf.flight_id
	WHERE jf.journey_id = $1
	ORDER BY f.departure_time`

func (r *PGJourneyRepository) JourneyFlights(ctx context.Context, journeyID int64) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, journeyFlightsSQL, journeyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.ArrivalTime, &f.Duration, &f.Aircompany, &f.Price, &f.SoldOut, &f.Unavailable, &f.InsertedOn, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

// finalizeAggregate derives totals and the ordered airport path. Flights
// arrive ordered by departure time, so the wait time is the sum of the gaps
// between consecutive legs.
func finalizeAggregate(agg *domain.JourneyAggregate) {
	for i, f := range agg.Flights {
		agg.TotalPrice += f.Price
		agg.TotalFlightTime += f.FlightTime()
		if i == 0 {
			agg.Airports = append(agg.Airports, f.FromAirport)
		} else {
			agg.TotalWaitTime += f.DepartureTime.Sub(agg.Flights[i-1].ArrivalTime)
		}
		agg.Airports = append(agg.Airports, f.ToAirport)
	}
}

var _ JourneyRepository = (*PGJourneyRepository)(nil)

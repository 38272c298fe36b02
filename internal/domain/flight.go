package domain

import "time"

// Flight is a persisted leg. The business key for upserts is
// (from_airport, to_airport, departure_time, arrival_time, flight_number).
type Flight struct {
	ID            int64
	FlightNumber  string
	FromAirport   string
	ToAirport     string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Duration      string
	Aircompany    string
	Price         float64
	SoldOut       bool
	Unavailable   bool
	InsertedOn    time.Time
	UpdatedAt     time.Time
}

// FlightTime is the in-air time of the leg.
func (f Flight) FlightTime() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

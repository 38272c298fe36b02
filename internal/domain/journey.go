package domain

import "time"

// Journey is the persisted record of one chosen itinerary. Journeys are not
// deduplicated: the same itinerary discovered twice produces two rows.
type Journey struct {
	ID            int64
	Persons       int
	PeriodStart   time.Time
	PeriodEnd     time.Time
	TotalDuration string
	CreatedAt     time.Time
}

// Location is a city (or country grouping key) that owns airports.
type Location struct {
	Name    string
	Country string
}

// JourneyAggregate is the read-side view of a stored journey with its flights
// re-ordered by departure time and the derived totals.
type JourneyAggregate struct {
	JourneyID       int64
	Persons         int
	PeriodStart     time.Time
	PeriodEnd       time.Time
	TotalPrice      float64
	TotalFlightTime time.Duration
	TotalWaitTime   time.Duration
	Airports        []string
	Flights         []Flight
}

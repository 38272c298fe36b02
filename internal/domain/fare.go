package domain

import "time"

// FareOffer is a one-way offer returned by the fare provider. Offers are
// request-scoped and never stored as-is.
type FareOffer struct {
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	FlightNumber  string
	Price         float64
	SoldOut       bool
	Unavailable   bool
}

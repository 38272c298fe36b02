package domain

import (
	"fmt"
	"time"
)

// Connection-time policy for multi-leg itineraries. A layover shorter than
// the minimum is not a realistic connection; one longer than the maximum is
// a separate trip, not a wait.
const (
	MinLayover = 75 * time.Minute
	MaxLayover = 480 * time.Minute
)

// Segment is one leg of an itinerary with the fare chosen for it.
type Segment struct {
	Origin      string
	Destination string
	Offer       FareOffer
}

// Itinerary is an ordered sequence of segments forming one journey. It is
// built in memory and only becomes durable once persisted as a Journey.
type Itinerary struct {
	Segments []Segment
}

// TotalPrice sums the per-segment fares.
func (it Itinerary) TotalPrice() float64 {
	var total float64
	for _, s := range it.Segments {
		total += s.Offer.Price
	}
	return total
}

// TotalDuration is elapsed time from first departure to last arrival,
// layovers included.
func (it Itinerary) TotalDuration() time.Duration {
	if len(it.Segments) == 0 {
		return 0
	}
	first := it.Segments[0].Offer.DepartureTime
	last := it.Segments[len(it.Segments)-1].Offer.ArrivalTime
	return last.Sub(first)
}

// LayoversValid reports whether every consecutive connection falls inside
// [MinLayover, MaxLayover]. Single-segment itineraries are always valid.
func (it Itinerary) LayoversValid() bool {
	for i := 1; i < len(it.Segments); i++ {
		layover := it.Segments[i].Offer.DepartureTime.Sub(it.Segments[i-1].Offer.ArrivalTime)
		if layover < MinLayover || layover > MaxLayover {
			return false
		}
	}
	return true
}

// FormatElapsed renders a duration as HH:MM:SS elapsed time.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

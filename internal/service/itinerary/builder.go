package itinerary

import (
	"context"
	"time"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/sirupsen/logrus"
)

// FareSource is the per-segment fare lookup the builder depends on.
type FareSource interface {
	FetchFares(ctx context.Context, origin, destination string, dateFrom, dateTo time.Time) ([]domain.FareOffer, error)
}

// Builder turns a route into validated itineraries by fetching fare options
// per segment and combining them under the connection-time policy.
type Builder struct {
	fares                FareSource
	maxOptionsPerSegment int
	log                  *logrus.Logger
}

func NewBuilder(fares FareSource, maxOptionsPerSegment int, log *logrus.Logger) *Builder {
	if maxOptionsPerSegment <= 0 {
		maxOptionsPerSegment = 5
	}
	return &Builder{fares: fares, maxOptionsPerSegment: maxOptionsPerSegment, log: log}
}

// Build fetches fare options for every consecutive pair in route and returns
// every combination whose layovers fall inside the connection-time policy.
// The outbound window is trimmed at the end by tripDays so a trip of that
// length still fits in the period; a return leg gets the symmetric trim at
// the start. A segment with zero options abandons the whole route: that is
// expected and yields (nil, nil). Provider failures come back as
// *domain.ExternalSourceError so the caller can skip the route and move on.
func (b *Builder) Build(ctx context.Context, route []string, periodStart, periodEnd time.Time, tripDays int, returnLeg bool) ([]domain.Itinerary, error) {
	if len(route) < 2 {
		return nil, nil
	}

	dateFrom, dateTo := periodStart, periodEnd.AddDate(0, 0, -tripDays)
	if returnLeg {
		dateFrom, dateTo = periodStart.AddDate(0, 0, tripDays), periodEnd
	}
	if dateTo.Before(dateFrom) {
		return nil, nil
	}

	segmentOptions := make([][]domain.FareOffer, 0, len(route)-1)
	for i := 0; i < len(route)-1; i++ {
		offers, err := b.fares.FetchFares(ctx, route[i], route[i+1], dateFrom, dateTo)
		if err != nil {
			return nil, err
		}
		if len(offers) == 0 {
			b.log.WithFields(logrus.Fields{"origin": route[i], "destination": route[i+1]}).Debug("no fares for segment, abandoning route")
			return nil, nil
		}
		// Offers are sorted ascending by price, so the cap keeps the
		// cheapest options. The cap bounds the cartesian product below;
		// without it a long route with busy segments explodes.
		if len(offers) > b.maxOptionsPerSegment {
			offers = offers[:b.maxOptionsPerSegment]
		}
		segmentOptions = append(segmentOptions, offers)
	}

	candidates := combine(route, segmentOptions)

	itineraries := make([]domain.Itinerary, 0, len(candidates))
	for _, it := range candidates {
		if !it.LayoversValid() {
			continue
		}
		itineraries = append(itineraries, it)
	}
	return itineraries, nil
}

// combine enumerates the cartesian product of the per-segment option lists.
func combine(route []string, segmentOptions [][]domain.FareOffer) []domain.Itinerary {
	combos := [][]domain.FareOffer{{}}
	for _, options := range segmentOptions {
		next := make([][]domain.FareOffer, 0, len(combos)*len(options))
		for _, combo := range combos {
			for _, offer := range options {
				extended := make([]domain.FareOffer, 0, len(combo)+1)
				extended = append(extended, combo...)
				extended = append(extended, offer)
				next = append(next, extended)
			}
		}
		combos = next
	}

	itineraries := make([]domain.Itinerary, 0, len(combos))
	for _, combo := range combos {
		segments := make([]domain.Segment, 0, len(combo))
		for i, offer := range combo {
			segments = append(segments, domain.Segment{
				Origin:      route[i],
				Destination: route[i+1],
				Offer:       offer,
			})
		}
		itineraries = append(itineraries, domain.Itinerary{Segments: segments})
	}
	return itineraries
}

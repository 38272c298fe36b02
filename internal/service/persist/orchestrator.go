package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/Domenick1991/faresearch/internal/kafka"
	"github.com/Domenick1991/faresearch/internal/metrics"
	"github.com/sirupsen/logrus"
)

type FlightStore interface {
	Upsert(ctx context.Context, flight *domain.Flight) (int64, error)
}

type JourneyStore interface {
	Create(ctx context.Context, journey *domain.Journey) (int64, error)
	LinkFlight(ctx context.Context, journeyID, flightID int64, legOrder int) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Orchestrator turns a validated itinerary into durable rows: one idempotent
// flight upsert per leg, one journey row, then the association rows in leg
// order. No transaction spans the sequence; a crash mid-way can leave a
// journey with fewer links than legs, which the read path tolerates.
type Orchestrator struct {
	flights       FlightStore
	journeys      JourneyStore
	producer      Producer
	journeysTopic string
	aircompany    string
	log           *logrus.Logger
}

func NewOrchestrator(flights FlightStore, journeys JourneyStore, producer Producer, journeysTopic, aircompany string, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		flights:       flights,
		journeys:      journeys,
		producer:      producer,
		journeysTopic: journeysTopic,
		aircompany:    aircompany,
		log:           log,
	}
}

// PersistItinerary stores every leg, creates the journey, and links them.
// Sharing a leg with a previously stored itinerary reuses the existing
// flight row via the business-key upsert. Journeys themselves are never
// deduplicated.
func (o *Orchestrator) PersistItinerary(ctx context.Context, it domain.Itinerary, persons int, periodStart, periodEnd time.Time) (int64, error) {
	if len(it.Segments) == 0 {
		return 0, &domain.ValidationError{Field: "itinerary", Reason: "no segments"}
	}

	flightIDs := make([]int64, 0, len(it.Segments))
	for _, seg := range it.Segments {
		flight := flightFromSegment(seg, o.aircompany)
		id, err := o.flights.Upsert(ctx, &flight)
		if err != nil {
			return 0, &domain.PersistenceError{Op: fmt.Sprintf("upsert flight %s->%s", seg.Origin, seg.Destination), Err: err}
		}
		flightIDs = append(flightIDs, id)
	}

	journey := &domain.Journey{
		Persons:       persons,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		TotalDuration: domain.FormatElapsed(it.TotalDuration()),
	}
	journeyID, err := o.journeys.Create(ctx, journey)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "create journey", Err: err}
	}

	for i, flightID := range flightIDs {
		if err := o.journeys.LinkFlight(ctx, journeyID, flightID, i); err != nil {
			return 0, &domain.PersistenceError{Op: fmt.Sprintf("link journey %d flight %d", journeyID, flightID), Err: err}
		}
	}

	metrics.JourneysPersisted.Inc()
	o.publish(ctx, journeyID, it, persons, periodStart, periodEnd)
	return journeyID, nil
}

// publish is best effort: a lost event never fails a stored journey.
func (o *Orchestrator) publish(ctx context.Context, journeyID int64, it domain.Itinerary, persons int, periodStart, periodEnd time.Time) {
	if o.producer == nil || o.journeysTopic == "" {
		return
	}

	airports := make([]string, 0, len(it.Segments)+1)
	airports = append(airports, it.Segments[0].Origin)
	for _, seg := range it.Segments {
		airports = append(airports, seg.Destination)
	}

	event := kafka.JourneyEvent{
		Type:          "journey_discovered",
		JourneyID:     journeyID,
		Persons:       persons,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		TotalPrice:    it.TotalPrice(),
		TotalDuration: domain.FormatElapsed(it.TotalDuration()),
		Airports:      airports,
	}
	if err := o.producer.Publish(ctx, o.journeysTopic, fmt.Sprintf("%d", journeyID), event); err != nil {
		o.log.WithError(err).WithField("journey_id", journeyID).Warn("failed to publish journey event")
	}
}

func flightFromSegment(seg domain.Segment, aircompany string) domain.Flight {
	offer := seg.Offer
	return domain.Flight{
		FlightNumber:  offer.FlightNumber,
		FromAirport:   seg.Origin,
		ToAirport:     seg.Destination,
		DepartureTime: offer.DepartureTime,
		ArrivalTime:   offer.ArrivalTime,
		Duration:      domain.FormatElapsed(offer.ArrivalTime.Sub(offer.DepartureTime)),
		Aircompany:    aircompany,
		Price:         offer.Price,
		SoldOut:       offer.SoldOut,
		Unavailable:   offer.Unavailable,
	}
}

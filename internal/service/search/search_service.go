package search

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/Domenick1991/faresearch/internal/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Phase names the coordinator's progress through one search. Only origin
// resolution can abort a search; every later failure is contained to its
// unit of work, so RetrievingStored is always reached.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseResolvingAirports Phase = "resolving_airports"
	PhaseBuildingRoutes    Phase = "building_routes"
	PhaseFetchingFares     Phase = "fetching_fares"
	PhasePersisting        Phase = "persisting"
	PhaseRetrievingStored  Phase = "retrieving_stored"
	PhaseDone              Phase = "done"
	PhaseError             Phase = "error"
)

type AirportResolver interface {
	AirportsForLocation(ctx context.Context, nameOrCountry string) ([]string, error)
	LocationByAirport(ctx context.Context, code string) (*domain.Location, error)
}

type RouteFinder interface {
	FindRoutes(ctx context.Context, origin, destination string) ([][]string, error)
}

type ItineraryBuilder interface {
	Build(ctx context.Context, route []string, periodStart, periodEnd time.Time, tripDays int, returnLeg bool) ([]domain.Itinerary, error)
}

type AnyDestinationFareSource interface {
	FetchFaresAnyDestination(ctx context.Context, origin string, dateFrom, dateTo time.Time, priceCeiling float64) ([]domain.FareOffer, error)
}

type Persister interface {
	PersistItinerary(ctx context.Context, it domain.Itinerary, persons int, periodStart, periodEnd time.Time) (int64, error)
}

type JourneyReader interface {
	StoredJourneys(ctx context.Context, fromLoc, toLoc string, periodStart, periodEnd time.Time) ([]domain.JourneyAggregate, error)
}

type SearchUseCase interface {
	Search(ctx context.Context, input Input) (*Result, error)
}

type Input struct {
	From         string
	To           string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	DurationDays int
	Persons      int
	ReturnFlight bool
}

// RankedView exposes the same journey set twice, ascending by price and by
// total elapsed time.
type RankedView struct {
	ByPrice    []domain.JourneyAggregate
	ByDuration []domain.JourneyAggregate
}

type Result struct {
	SearchID string
	Outbound RankedView
	Return   RankedView
}

// SearchService coordinates one search end to end: resolve locations to
// airports, discover routes, build and persist itineraries, then re-read the
// store and rank what it holds. All work is sequential; failures below
// origin resolution are logged and skipped.
type SearchService struct {
	airports     AirportResolver
	finder       RouteFinder
	builder      ItineraryBuilder
	fares        AnyDestinationFareSource
	persister    Persister
	journeys     JourneyReader
	priceCeiling float64
	log          *logrus.Logger
}

func NewSearchService(
	airports AirportResolver,
	finder RouteFinder,
	builder ItineraryBuilder,
	fares AnyDestinationFareSource,
	persister Persister,
	journeys JourneyReader,
	priceCeiling float64,
	log *logrus.Logger,
) *SearchService {
	return &SearchService{
		airports:     airports,
		finder:       finder,
		builder:      builder,
		fares:        fares,
		persister:    persister,
		journeys:     journeys,
		priceCeiling: priceCeiling,
		log:          log,
	}
}

func (s *SearchService) Search(ctx context.Context, input Input) (*Result, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	metrics.SearchesTotal.Inc()
	searchID := uuid.NewString()
	log := s.log.WithField("search_id", searchID)

	log.WithField("phase", PhaseResolvingAirports).Info("resolving airports")
	fromAirports, err := s.airports.AirportsForLocation(ctx, input.From)
	if err != nil {
		metrics.SearchesFailed.Inc()
		return nil, err
	}
	if len(fromAirports) == 0 {
		metrics.SearchesFailed.Inc()
		return nil, &domain.NotFoundError{Resource: "departure airports", Key: input.From}
	}

	var toAirports []string
	if input.To != "" {
		toAirports, err = s.airports.AirportsForLocation(ctx, input.To)
		if err != nil {
			log.WithError(err).Warn("destination resolution failed, degrading to any-destination mode")
			toAirports = nil
		}
	}
	anyDestination := len(toAirports) == 0

	if anyDestination {
		s.searchAnyDestination(ctx, log, input, fromAirports)
	} else {
		s.searchPairs(ctx, log, input, fromAirports, toAirports)
	}

	log.WithField("phase", PhaseRetrievingStored).Info("retrieving stored journeys")
	toFilter := input.To
	if anyDestination {
		toFilter = ""
	}
	aggregates, err := s.journeys.StoredJourneys(ctx, input.From, toFilter, input.PeriodStart, input.PeriodEnd)
	if err != nil {
		metrics.SearchesFailed.Inc()
		return nil, err
	}

	outbound, returning := s.partition(ctx, log, aggregates, input)
	log.WithFields(logrus.Fields{"phase": PhaseDone, "outbound": len(outbound), "return": len(returning)}).Info("search complete")

	return &Result{
		SearchID: searchID,
		Outbound: rank(outbound),
		Return:   rank(returning),
	}, nil
}

// searchPairs walks every (origin, destination) airport pair, finds minimal
// routes, and persists whatever the builder validates. A pair with no route
// is skipped, not an error.
func (s *SearchService) searchPairs(ctx context.Context, log *logrus.Entry, input Input, fromAirports, toAirports []string) {
	log.WithField("phase", PhaseBuildingRoutes).Info("building routes")
	for _, from := range fromAirports {
		for _, to := range toAirports {
			routes, err := s.finder.FindRoutes(ctx, from, to)
			if err != nil {
				log.WithError(err).WithFields(logrus.Fields{"from": from, "to": to}).Warn("route discovery failed, skipping pair")
				continue
			}
			if len(routes) == 0 {
				continue
			}

			for _, route := range routes {
				s.buildAndPersist(ctx, log, input, route, false)
				if input.ReturnFlight {
					s.buildAndPersist(ctx, log, input, reverse(route), true)
				}
			}
		}
	}
}

func (s *SearchService) buildAndPersist(ctx context.Context, log *logrus.Entry, input Input, route []string, returnLeg bool) {
	log.WithFields(logrus.Fields{"phase": PhaseFetchingFares, "route": route, "return": returnLeg}).Debug("fetching fares")
	itineraries, err := s.builder.Build(ctx, route, input.PeriodStart, input.PeriodEnd, input.DurationDays, returnLeg)
	if err != nil {
		var extErr *domain.ExternalSourceError
		if errors.As(err, &extErr) {
			metrics.ProviderFailures.Inc()
			log.WithError(err).WithField("route", route).Warn("fare fetch failed, skipping route")
			return
		}
		log.WithError(err).WithField("route", route).Warn("itinerary build failed, skipping route")
		return
	}

	for _, it := range itineraries {
		log.WithField("phase", PhasePersisting).Debug("persisting itinerary")
		if _, err := s.persister.PersistItinerary(ctx, it, input.Persons, input.PeriodStart, input.PeriodEnd); err != nil {
			log.WithError(err).WithField("route", route).Warn("persist failed, skipping itinerary")
		}
	}
}

// searchAnyDestination covers searches with no destination: every offer from
// an origin airport becomes its own single-leg journey.
func (s *SearchService) searchAnyDestination(ctx context.Context, log *logrus.Entry, input Input, fromAirports []string) {
	log.WithField("phase", PhaseFetchingFares).Info("fetching fares for any destination")
	for _, from := range fromAirports {
		offers, err := s.fares.FetchFaresAnyDestination(ctx, from, input.PeriodStart, input.PeriodEnd, s.priceCeiling)
		if err != nil {
			metrics.ProviderFailures.Inc()
			log.WithError(err).WithField("from", from).Warn("any-destination fetch failed, skipping airport")
			continue
		}

		for _, offer := range offers {
			it := domain.Itinerary{Segments: []domain.Segment{{
				Origin:      offer.Origin,
				Destination: offer.Destination,
				Offer:       offer,
			}}}
			if _, err := s.persister.PersistItinerary(ctx, it, input.Persons, input.PeriodStart, input.PeriodEnd); err != nil {
				log.WithError(err).WithFields(logrus.Fields{"from": offer.Origin, "to": offer.Destination}).Warn("persist failed, skipping offer")
			}
		}
	}
}

// partition splits stored journeys into outbound and return sets by matching
// the departure city of each journey against the requested origin and
// destination. Journeys whose departure city resolves to neither stay in the
// outbound set: for any-destination searches everything departs the origin.
func (s *SearchService) partition(ctx context.Context, log *logrus.Entry, aggregates []domain.JourneyAggregate, input Input) (outbound, returning []domain.JourneyAggregate) {
	for _, agg := range aggregates {
		if len(agg.Airports) == 0 {
			continue
		}
		loc, err := s.airports.LocationByAirport(ctx, agg.Airports[0])
		if err != nil {
			log.WithError(err).WithField("airport", agg.Airports[0]).Warn("departure location lookup failed, keeping journey outbound")
			outbound = append(outbound, agg)
			continue
		}
		if input.To != "" && (loc.Name == input.To || loc.Country == input.To) {
			returning = append(returning, agg)
			continue
		}
		outbound = append(outbound, agg)
	}
	return outbound, returning
}

func rank(aggregates []domain.JourneyAggregate) RankedView {
	byPrice := make([]domain.JourneyAggregate, len(aggregates))
	copy(byPrice, aggregates)
	sort.SliceStable(byPrice, func(i, j int) bool {
		return byPrice[i].TotalPrice < byPrice[j].TotalPrice
	})

	byDuration := make([]domain.JourneyAggregate, len(aggregates))
	copy(byDuration, aggregates)
	sort.SliceStable(byDuration, func(i, j int) bool {
		di := byDuration[i].TotalFlightTime + byDuration[i].TotalWaitTime
		dj := byDuration[j].TotalFlightTime + byDuration[j].TotalWaitTime
		return di < dj
	})

	return RankedView{ByPrice: byPrice, ByDuration: byDuration}
}

func validate(input Input) error {
	switch {
	case input.From == "":
		return &domain.ValidationError{Field: "from", Reason: "origin location is required"}
	case input.PeriodStart.IsZero() || input.PeriodEnd.IsZero():
		return &domain.ValidationError{Field: "period", Reason: "period start and end are required"}
	case input.PeriodEnd.Before(input.PeriodStart):
		return &domain.ValidationError{Field: "period", Reason: "period end precedes period start"}
	case input.DurationDays < 1:
		return &domain.ValidationError{Field: "duration", Reason: "trip duration must be at least one day"}
	case input.Persons < 1:
		return &domain.ValidationError{Field: "persons", Reason: "persons must be at least one"}
	}
	return nil
}

func reverse(route []string) []string {
	reversed := make([]string, len(route))
	for i, code := range route {
		reversed[len(route)-1-i] = code
	}
	return reversed
}

var _ SearchUseCase = (*SearchService)(nil)

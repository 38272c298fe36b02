package airports

import (
	"context"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/Domenick1991/faresearch/internal/repository"
	"github.com/sirupsen/logrus"
)

type AirportUseCase interface {
	ConnectedAirports(ctx context.Context, code string) ([]string, error)
	AirportsForLocation(ctx context.Context, nameOrCountry string) ([]string, error)
	LocationByAirport(ctx context.Context, code string) (*domain.Location, error)
	AirportCodes(ctx context.Context) ([]string, error)
	Locations(ctx context.Context) ([]domain.Location, error)
}

// GraphCache caches adjacency lists. A nil cache disables caching.
type GraphCache interface {
	GetConnections(ctx context.Context, code string) ([]string, error)
	SetConnections(ctx context.Context, code string, connections []string) error
}

// AirportService resolves locations to airports and serves direct-edge
// lookups over the persisted graph, cache-aside through redis.
type AirportService struct {
	repo  repository.AirportRepository
	cache GraphCache
	log   *logrus.Logger
}

func NewAirportService(repo repository.AirportRepository, cache GraphCache, log *logrus.Logger) *AirportService {
	return &AirportService{repo: repo, cache: cache, log: log}
}

func (s *AirportService) ConnectedAirports(ctx context.Context, code string) ([]string, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetConnections(ctx, code); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.WithError(err).WithField("airport", code).Warn("graph cache read failed")
		}
	}

	connections, err := s.repo.ConnectedAirports(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetConnections(ctx, code, connections); err != nil {
			s.log.WithError(err).WithField("airport", code).Warn("graph cache write failed")
		}
	}
	return connections, nil
}

func (s *AirportService) AirportsForLocation(ctx context.Context, nameOrCountry string) ([]string, error) {
	return s.repo.AirportsForLocation(ctx, nameOrCountry)
}

func (s *AirportService) LocationByAirport(ctx context.Context, code string) (*domain.Location, error) {
	return s.repo.LocationByAirport(ctx, code)
}

func (s *AirportService) AirportCodes(ctx context.Context) ([]string, error) {
	return s.repo.ListAirportCodes(ctx)
}

func (s *AirportService) Locations(ctx context.Context) ([]domain.Location, error) {
	return s.repo.ListLocations(ctx)
}

var _ AirportUseCase = (*AirportService)(nil)

package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock структуры

type MockAirportResolver struct {
	mock.Mock
}

func (m *MockAirportResolver) AirportsForLocation(ctx context.Context, nameOrCountry string) ([]string, error) {
	args := m.Called(ctx, nameOrCountry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAirportResolver) LocationByAirport(ctx context.Context, code string) (*domain.Location, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

type MockRouteFinder struct {
	mock.Mock
}

func (m *MockRouteFinder) FindRoutes(ctx context.Context, origin, destination string) ([][]string, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]string), args.Error(1)
}

type MockItineraryBuilder struct {
	mock.Mock
}

func (m *MockItineraryBuilder) Build(ctx context.Context, route []string, periodStart, periodEnd time.Time, tripDays int, returnLeg bool) ([]domain.Itinerary, error) {
	args := m.Called(ctx, route, periodStart, periodEnd, tripDays, returnLeg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

type MockFareSource struct {
	mock.Mock
}

func (m *MockFareSource) FetchFaresAnyDestination(ctx context.Context, origin string, dateFrom, dateTo time.Time, priceCeiling float64) ([]domain.FareOffer, error) {
	args := m.Called(ctx, origin, dateFrom, dateTo, priceCeiling)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FareOffer), args.Error(1)
}

type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) PersistItinerary(ctx context.Context, it domain.Itinerary, persons int, periodStart, periodEnd time.Time) (int64, error) {
	args := m.Called(ctx, it, persons, periodStart, periodEnd)
	return args.Get(0).(int64), args.Error(1)
}

type MockJourneyReader struct {
	mock.Mock
}

func (m *MockJourneyReader) StoredJourneys(ctx context.Context, fromLoc, toLoc string, periodStart, periodEnd time.Time) ([]domain.JourneyAggregate, error) {
	args := m.Called(ctx, fromLoc, toLoc, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JourneyAggregate), args.Error(1)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type serviceMocks struct {
	airports *MockAirportResolver
	finder   *MockRouteFinder
	builder  *MockItineraryBuilder
	fares    *MockFareSource
	persist  *MockPersister
	journeys *MockJourneyReader
}

func newTestService() (*SearchService, serviceMocks) {
	m := serviceMocks{
		airports: &MockAirportResolver{},
		finder:   &MockRouteFinder{},
		builder:  &MockItineraryBuilder{},
		fares:    &MockFareSource{},
		persist:  &MockPersister{},
		journeys: &MockJourneyReader{},
	}
	service := NewSearchService(m.airports, m.finder, m.builder, m.fares, m.persist, m.journeys, 2000, testLogger())
	return service, m
}

func validInput() Input {
	return Input{
		From:         "Berlin",
		To:           "Italy",
		PeriodStart:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:    time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		DurationDays: 5,
		Persons:      2,
	}
}

func testItinerary(price float64) domain.Itinerary {
	dep := time.Date(2026, 9, 3, 8, 0, 0, 0, time.UTC)
	return domain.Itinerary{Segments: []domain.Segment{{
		Origin:      "BER",
		Destination: "BGY",
		Offer: domain.FareOffer{
			Origin:        "BER",
			Destination:   "BGY",
			DepartureTime: dep,
			ArrivalTime:   dep.Add(2 * time.Hour),
			Price:         price,
		},
	}}}
}

// Тест 1: Ошибки валидации входных параметров
func TestSearchService_Search_ValidationErrors(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	testCases := []struct {
		name        string
		mutate      func(*Input)
		expectedErr string
	}{
		{
			name:        "Empty origin",
			mutate:      func(in *Input) { in.From = "" },
			expectedErr: "origin location is required",
		},
		{
			name:        "Zero period start",
			mutate:      func(in *Input) { in.PeriodStart = time.Time{} },
			expectedErr: "period start and end are required",
		},
		{
			name:        "Period end before start",
			mutate:      func(in *Input) { in.PeriodEnd = in.PeriodStart.AddDate(0, 0, -1) },
			expectedErr: "period end precedes period start",
		},
		{
			name:        "Zero duration",
			mutate:      func(in *Input) { in.DurationDays = 0 },
			expectedErr: "trip duration must be at least one day",
		},
		{
			name:        "Zero persons",
			mutate:      func(in *Input) { in.Persons = 0 },
			expectedErr: "persons must be at least one",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			result, err := service.Search(ctx, input)

			assert.Error(t, err)
			assert.Nil(t, result)
			var validationErr *domain.ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}

// Тест 2: Пункт отправления не найден - поиск прерывается
func TestSearchService_Search_OriginNotFound(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	m.airports.On("AirportsForLocation", ctx, "Berlin").Return([]string{}, nil).Once()

	result, err := service.Search(ctx, validInput())

	assert.Error(t, err)
	assert.Nil(t, result)
	var notFoundErr *domain.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)

	m.finder.AssertNotCalled(t, "FindRoutes")
	m.journeys.AssertNotCalled(t, "StoredJourneys")
}

// Тест 3: Успешный поиск по паре аэропортов
func TestSearchService_Search_Pairs(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	input := validInput()

	it := testItinerary(90)
	route := []string{"BER", "BGY"}

	m.airports.On("AirportsForLocation", ctx, "Berlin").Return([]string{"BER"}, nil).Once()
	m.airports.On("AirportsForLocation", ctx, "Italy").Return([]string{"BGY"}, nil).Once()
	m.finder.On("FindRoutes", ctx, "BER", "BGY").Return([][]string{route}, nil).Once()
	m.builder.On("Build", ctx, route, input.PeriodStart, input.PeriodEnd, 5, false).Return([]domain.Itinerary{it}, nil).Once()
	m.persist.On("PersistItinerary", ctx, it, 2, input.PeriodStart, input.PeriodEnd).Return(int64(1), nil).Once()

	stored := []domain.JourneyAggregate{{JourneyID: 1, TotalPrice: 90, Airports: []string{"BER", "BGY"}}}
	m.journeys.On("StoredJourneys", ctx, "Berlin", "Italy", input.PeriodStart, input.PeriodEnd).Return(stored, nil).Once()
	m.airports.On("LocationByAirport", ctx, "BER").Return(&domain.Location{Name: "Berlin", Country: "Germany"}, nil).Once()

	result, err := service.Search(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.NotEmpty(t, result.SearchID)
	assert.Len(t, result.Outbound.ByPrice, 1)
	assert.Empty(t, result.Return.ByPrice)

	m.airports.AssertExpectations(t)
	m.finder.AssertExpectations(t)
	m.builder.AssertExpectations(t)
	m.persist.AssertExpectations(t)
	m.journeys.AssertExpectations(t)
}

// Тест 4: Обратный рейс строится по развёрнутому маршруту
func TestSearchService_Search_ReturnFlight(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	input := validInput()
	input.ReturnFlight = true

	route := []string{"BER", "VIE", "BGY"}
	reversed := []string{"BGY", "VIE", "BER"}

	m.airports.On("AirportsForLocation", ctx, "Berlin").Return([]string{"BER"}, nil).Once()
	m.airports.On("AirportsForLocation", ctx, "Italy").Return([]string{"BGY"}, nil).Once()
	m.finder.On("FindRoutes", ctx, "BER", "BGY").Return([][]string{route}, nil).Once()
	m.builder.On("Build", ctx, route, input.PeriodStart, input.PeriodEnd, 5, false).Return([]domain.Itinerary{}, nil).Once()
	m.builder.On("Build", ctx, reversed, input.PeriodStart, input.PeriodEnd, 5, true).Return([]domain.Itinerary{}, nil).Once()
	m.journeys.On("StoredJourneys", ctx, "Berlin", "Italy", input.PeriodStart, input.PeriodEnd).Return([]domain.JourneyAggregate{}, nil).Once()

	result, err := service.Search(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	m.builder.AssertExpectations(t)
}

// Тест 5: Пункт назначения без аэропортов - режим любого направления
func TestSearchService_Search_AnyDestination(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	input := validInput()
	input.To = "Atlantis"

	dep := time.Date(2026, 9, 3, 8, 0, 0, 0, time.UTC)
	offers := []domain.FareOffer{
		{Origin: "BER", Destination: "BGY", DepartureTime: dep, ArrivalTime: dep.Add(2 * time.Hour), Price: 30},
		{Origin: "BER", Destination: "STN", DepartureTime: dep, ArrivalTime: dep.Add(time.Hour), Price: 45},
	}

	m.airports.On("AirportsForLocation", ctx, "Berlin").Return([]string{"BER"}, nil).Once()
	m.airports.On("AirportsForLocation", ctx, "Atlantis").Return([]string{}, nil).Once()
	m.fares.On("FetchFaresAnyDestination", ctx, "BER", input.PeriodStart, input.PeriodEnd, 2000.0).Return(offers, nil).Once()
	// Каждое предложение становится отдельной поездкой из одного перелёта
	m.persist.On("PersistItinerary", ctx, mock.Anything, 2, input.PeriodStart, input.PeriodEnd).Return(int64(1), nil).Twice()
	// Фильтр по назначению снимается
	m.journeys.On("StoredJourneys", ctx, "Berlin", "", input.PeriodStart, input.PeriodEnd).Return([]domain.JourneyAggregate{}, nil).Once()

	result, err := service.Search(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, result)

	m.fares.AssertExpectations(t)
	m.persist.AssertExpectations(t)
	m.journeys.AssertExpectations(t)
	m.finder.AssertNotCalled(t, "FindRoutes")
}

// Тест 6: Ошибка провайдера по одному маршруту не прерывает поиск
func TestSearchService_Search_ProviderErrorSkipsRoute(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	input := validInput()

	route := []string{"BER", "BGY"}
	providerErr := &domain.ExternalSourceError{Provider: "ryanair", Err: errors.New("status 500")}

	m.airports.On("AirportsForLocation", ctx, "Berlin").Return([]string{"BER"}, nil).Once()
	m.airports.On("AirportsForLocation", ctx, "Italy").Return([]string{"BGY"}, nil).Once()
	m.finder.On("FindRoutes", ctx, "BER", "BGY").Return([][]string{route}, nil).Once()
	m.builder.On("Build", ctx, route, input.PeriodStart, input.PeriodEnd, 5, false).Return(nil, providerErr).Once()
	m.journeys.On("StoredJourneys", ctx, "Berlin", "Italy", input.PeriodStart, input.PeriodEnd).Return([]domain.JourneyAggregate{}, nil).Once()

	result, err := service.Search(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	m.persist.AssertNotCalled(t, "PersistItinerary")
}

// Тест 7: Разделение на туда и обратно по городу вылета
func TestSearchService_Search_PartitionsByDepartureLocation(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	input := validInput()

	m.airports.On("AirportsForLocation", ctx, "Berlin").Return([]string{"BER"}, nil).Once()
	m.airports.On("AirportsForLocation", ctx, "Italy").Return([]string{"BGY"}, nil).Once()
	m.finder.On("FindRoutes", ctx, "BER", "BGY").Return([][]string{}, nil).Once()

	stored := []domain.JourneyAggregate{
		{JourneyID: 1, TotalPrice: 90, Airports: []string{"BER", "BGY"}},
		{JourneyID: 2, TotalPrice: 70, Airports: []string{"BGY", "BER"}},
	}
	m.journeys.On("StoredJourneys", ctx, "Berlin", "Italy", input.PeriodStart, input.PeriodEnd).Return(stored, nil).Once()
	m.airports.On("LocationByAirport", ctx, "BER").Return(&domain.Location{Name: "Berlin", Country: "Germany"}, nil).Once()
	m.airports.On("LocationByAirport", ctx, "BGY").Return(&domain.Location{Name: "Bergamo", Country: "Italy"}, nil).Once()

	result, err := service.Search(ctx, input)

	assert.NoError(t, err)
	assert.Len(t, result.Outbound.ByPrice, 1)
	assert.Equal(t, int64(1), result.Outbound.ByPrice[0].JourneyID)
	assert.Len(t, result.Return.ByPrice, 1)
	assert.Equal(t, int64(2), result.Return.ByPrice[0].JourneyID)
}

// Тест: предупреждения partition несут search_id из переданного логгера
func TestSearchService_Partition_LogsWithSearchContext(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	input := validInput()

	logger, hook := logtest.NewNullLogger()
	entry := logger.WithField("search_id", "s-1")

	// Настройка моков: поиск локации аэропорта падает
	m.airports.On("LocationByAirport", ctx, "BER").Return(nil, errors.New("db down")).Once()

	aggregates := []domain.JourneyAggregate{{JourneyID: 1, Airports: []string{"BER", "BGY"}}}
	outbound, returning := service.partition(ctx, entry, aggregates, input)

	// Проверки: поездка остаётся в прямой выдаче, предупреждение содержит search_id
	assert.Len(t, outbound, 1)
	assert.Empty(t, returning)
	if assert.Len(t, hook.Entries, 1) {
		assert.Equal(t, "s-1", hook.Entries[0].Data["search_id"])
	}
}

// Тест 8: Ранжирование по цене и по длительности
func TestRank(t *testing.T) {
	aggregates := []domain.JourneyAggregate{
		{JourneyID: 1, TotalPrice: 100, TotalFlightTime: time.Hour, TotalWaitTime: 0},
		{JourneyID: 2, TotalPrice: 50, TotalFlightTime: 3 * time.Hour, TotalWaitTime: 2 * time.Hour},
		{JourneyID: 3, TotalPrice: 80, TotalFlightTime: 2 * time.Hour, TotalWaitTime: time.Hour},
	}

	view := rank(aggregates)

	assert.Equal(t, int64(2), view.ByPrice[0].JourneyID)
	assert.Equal(t, int64(3), view.ByPrice[1].JourneyID)
	assert.Equal(t, int64(1), view.ByPrice[2].JourneyID)

	assert.Equal(t, int64(1), view.ByDuration[0].JourneyID)
	assert.Equal(t, int64(3), view.ByDuration[1].JourneyID)
	assert.Equal(t, int64(2), view.ByDuration[2].JourneyID)
}

// Тест 9: Разворот маршрута
func TestReverse(t *testing.T) {
	assert.Equal(t, []string{"FCO", "VIE", "BER"}, reverse([]string{"BER", "VIE", "FCO"}))
	assert.Equal(t, []string{"BER"}, reverse([]string{"BER"}))
}

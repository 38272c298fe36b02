package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/Domenick1991/faresearch/config"
	"github.com/Domenick1991/faresearch/internal/domain"
)

const providerName = "ryanair"

// FareSource is the contract the itinerary builder and the search coordinator
// consume. Implemented by Client against the live fare API.
type FareSource interface {
	FetchFares(ctx context.Context, origin, destination string, dateFrom, dateTo time.Time) ([]domain.FareOffer, error)
	FetchFaresAnyDestination(ctx context.Context, origin string, dateFrom, dateTo time.Time, priceCeiling float64) ([]domain.FareOffer, error)
}

// Client fetches one-way fare offers from the external fare provider. All
// failures come back as *domain.ExternalSourceError so callers can skip the
// affected segment without aborting sibling requests. No retries: a transient
// provider failure simply loses that unit of work.
type Client struct {
	faresBaseURL  string
	searchBaseURL string
	client        *http.Client
}

func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		faresBaseURL:  cfg.FaresBaseURL,
		searchBaseURL: cfg.SearchBaseURL,
		client:        &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second},
	}
}

// NewClientWithURLs points the client at custom base URLs (for tests).
func NewClientWithURLs(faresBaseURL, searchBaseURL string) *Client {
	return &Client{
		faresBaseURL:  faresBaseURL,
		searchBaseURL: searchBaseURL,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

type farePrice struct {
	Value        float64 `json:"value"`
	CurrencyCode string  `json:"currencyCode"`
}

type cheapestPerDayFare struct {
	Day           string     `json:"day"`
	DepartureDate string     `json:"departureDate"`
	ArrivalDate   string     `json:"arrivalDate"`
	FlightNumber  string     `json:"flightNumber"`
	Price         *farePrice `json:"price"`
	SoldOut       bool       `json:"soldOut"`
	Unavailable   bool       `json:"unavailable"`
}

type cheapestPerDayResponse struct {
	Outbound struct {
		Fares []cheapestPerDayFare `json:"fares"`
	} `json:"outbound"`
}

// FetchFares returns the cheapest offer per day for one origin/destination
// pair inside the window, ascending by price. Entries missing a departure,
// arrival or price are dropped rather than failing the call; the provider
// pads its calendar with such placeholders.
func (c *Client) FetchFares(ctx context.Context, origin, destination string, dateFrom, dateTo time.Time) ([]domain.FareOffer, error) {
	endpoint := fmt.Sprintf("%s/3/oneWayFares/%s/%s/cheapestPerDay?outboundDateFrom=%s&outboundDateTo=%s",
		c.faresBaseURL, url.PathEscape(origin), url.PathEscape(destination),
		dateFrom.Format("2006-01-02"), dateTo.Format("2006-01-02"))

	var raw cheapestPerDayResponse
	if err := c.doGet(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	offers := make([]domain.FareOffer, 0, len(raw.Outbound.Fares))
	for _, fare := range raw.Outbound.Fares {
		offer, ok := toOffer(origin, destination, fare.DepartureDate, fare.ArrivalDate, fare.FlightNumber, fare.Price, fare.SoldOut, fare.Unavailable)
		if !ok {
			continue
		}
		offers = append(offers, offer)
	}
	sortByPrice(offers)
	return offers, nil
}

type anyDestinationFare struct {
	Outbound struct {
		DepartureAirport struct {
			IataCode string `json:"iataCode"`
		} `json:"departureAirport"`
		ArrivalAirport struct {
			IataCode string `json:"iataCode"`
		} `json:"arrivalAirport"`
		DepartureDate string     `json:"departureDate"`
		ArrivalDate   string     `json:"arrivalDate"`
		FlightNumber  string     `json:"flightNumber"`
		Price         *farePrice `json:"price"`
		SoldOut       bool       `json:"soldOut"`
		Unavailable   bool       `json:"unavailable"`
	} `json:"outbound"`
}

type anyDestinationResponse struct {
	Fares []anyDestinationFare `json:"fares"`
}

// FetchFaresAnyDestination returns offers from origin to every reachable
// destination within the window and price bound. Used when a search names no
// destination.
func (c *Client) FetchFaresAnyDestination(ctx context.Context, origin string, dateFrom, dateTo time.Time, priceCeiling float64) ([]domain.FareOffer, error) {
	endpoint := fmt.Sprintf("%s/3/oneWayFares?departureAirportIataCode=%s&language=en&limit=10000&market=en-gb&offset=0&outboundDepartureDateFrom=%s&outboundDepartureDateTo=%s&priceValueTo=%.0f",
		c.searchBaseURL, url.QueryEscape(origin),
		dateFrom.Format("2006-01-02"), dateTo.Format("2006-01-02"), priceCeiling)

	var raw anyDestinationResponse
	if err := c.doGet(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	offers := make([]domain.FareOffer, 0, len(raw.Fares))
	for _, fare := range raw.Fares {
		out := fare.Outbound
		if out.ArrivalAirport.IataCode == "" {
			continue
		}
		offer, ok := toOffer(origin, out.ArrivalAirport.IataCode, out.DepartureDate, out.ArrivalDate, out.FlightNumber, out.Price, out.SoldOut, out.Unavailable)
		if !ok {
			continue
		}
		offers = append(offers, offer)
	}
	sortByPrice(offers)
	return offers, nil
}

func (c *Client) doGet(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &domain.ExternalSourceError{Provider: providerName, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.ExternalSourceError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.ExternalSourceError{Provider: providerName, Err: fmt.Errorf("GET %s returned status %d", endpoint, resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &domain.ExternalSourceError{Provider: providerName, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// toOffer normalizes one raw fare. Reports false when any required field is
// missing or malformed.
func toOffer(origin, destination, departure, arrival, flightNumber string, price *farePrice, soldOut, unavailable bool) (domain.FareOffer, bool) {
	if departure == "" || arrival == "" || price == nil {
		return domain.FareOffer{}, false
	}
	dep, err := parseFareTime(departure)
	if err != nil {
		return domain.FareOffer{}, false
	}
	arr, err := parseFareTime(arrival)
	if err != nil {
		return domain.FareOffer{}, false
	}
	return domain.FareOffer{
		Origin:        origin,
		Destination:   destination,
		DepartureTime: dep,
		ArrivalTime:   arr,
		FlightNumber:  flightNumber,
		Price:         price.Value,
		SoldOut:       soldOut,
		Unavailable:   unavailable,
	}, true
}

// The provider emits local times without a zone offset; fall back to RFC3339
// for feeds that include one.
func parseFareTime(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func sortByPrice(offers []domain.FareOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Price < offers[j].Price
	})
}

var _ FareSource = (*Client)(nil)

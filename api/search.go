package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/Domenick1991/faresearch/internal/service/search"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service search.SearchUseCase
}

type searchRequest struct {
	From            string `json:"from" binding:"required"`
	To              string `json:"to"`
	PeriodStart     string `json:"period_start" binding:"required"`
	PeriodEnd       string `json:"period_end" binding:"required"`
	Duration        int    `json:"duration" binding:"required,min=1"`
	NumberOfPersons int    `json:"number_of_persons" binding:"required,min=1"`
	ReturnFlight    bool   `json:"return_flight"`
}

type flightView struct {
	ID            int64   `json:"id"`
	FlightNumber  string  `json:"flight_number,omitempty"`
	FromAirport   string  `json:"from_airport"`
	ToAirport     string  `json:"to_airport"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	Duration      string  `json:"duration"`
	Aircompany    string  `json:"aircompany"`
	Price         float64 `json:"price"`
	SoldOut       bool    `json:"sold_out"`
	Unavailable   bool    `json:"unavailable"`
}

type journeyView struct {
	JourneyID       int64        `json:"journey_id"`
	Persons         int          `json:"persons"`
	PeriodStart     string       `json:"period_start"`
	PeriodEnd       string       `json:"period_end"`
	TotalPrice      float64      `json:"total_price"`
	TotalFlightTime string       `json:"total_flight_time"`
	TotalWaitTime   string       `json:"total_wait_time"`
	Airports        []string     `json:"airports"`
	Flights         []flightView `json:"flights"`
}

type rankedView struct {
	ByPrice    []journeyView `json:"by_price"`
	ByDuration []journeyView `json:"by_duration"`
}

type searchResponse struct {
	SearchID string     `json:"search_id"`
	Outbound rankedView `json:"outbound"`
	Return   rankedView `json:"return"`
}

func NewSearchHandler(service search.SearchUseCase) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.search)
}

func (h *SearchHandler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	periodStart, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start, expected YYYY-MM-DD"})
		return
	}
	periodEnd, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end, expected YYYY-MM-DD"})
		return
	}

	result, err := h.service.Search(c.Request.Context(), search.Input{
		From:         req.From,
		To:           req.To,
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		DurationDays: req.Duration,
		Persons:      req.NumberOfPersons,
		ReturnFlight: req.ReturnFlight,
	})
	if err != nil {
		var validationErr *domain.ValidationError
		var notFoundErr *domain.NotFoundError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &notFoundErr):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, searchResponse{
		SearchID: result.SearchID,
		Outbound: toRankedView(result.Outbound),
		Return:   toRankedView(result.Return),
	})
}

func toRankedView(view search.RankedView) rankedView {
	return rankedView{
		ByPrice:    toJourneyViews(view.ByPrice),
		ByDuration: toJourneyViews(view.ByDuration),
	}
}

func toJourneyViews(aggregates []domain.JourneyAggregate) []journeyView {
	views := make([]journeyView, 0, len(aggregates))
	for _, agg := range aggregates {
		views = append(views, journeyView{
			JourneyID:       agg.JourneyID,
			Persons:         agg.Persons,
			PeriodStart:     agg.PeriodStart.Format(time.RFC3339),
			PeriodEnd:       agg.PeriodEnd.Format(time.RFC3339),
			TotalPrice:      agg.TotalPrice,
			TotalFlightTime: domain.FormatElapsed(agg.TotalFlightTime),
			TotalWaitTime:   domain.FormatElapsed(agg.TotalWaitTime),
			Airports:        agg.Airports,
			Flights:         toFlightViews(agg.Flights),
		})
	}
	return views
}

func toFlightViews(flights []domain.Flight) []flightView {
	views := make([]flightView, 0, len(flights))
	for _, f := range flights {
		views = append(views, flightView{
			ID:            f.ID,
			FlightNumber:  f.FlightNumber,
			FromAirport:   f.FromAirport,
			ToAirport:     f.ToAirport,
			DepartureTime: f.DepartureTime.Format(time.RFC3339),
			ArrivalTime:   f.ArrivalTime.Format(time.RFC3339),
			Duration:      f.Duration,
			Aircompany:    f.Aircompany,
			Price:         f.Price,
			SoldOut:       f.SoldOut,
			Unavailable:   f.Unavailable,
		})
	}
	return views
}

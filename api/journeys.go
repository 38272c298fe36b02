package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/gin-gonic/gin"
)

// JourneyReader is the slice of the journey repository the handler needs.
type JourneyReader interface {
	JourneyFlights(ctx context.Context, journeyID int64) ([]domain.Flight, error)
	StoredJourneys(ctx context.Context, fromLoc, toLoc string, periodStart, periodEnd time.Time) ([]domain.JourneyAggregate, error)
}

type JourneyHandler struct {
	journeys JourneyReader
}

func NewJourneyHandler(journeys JourneyReader) *JourneyHandler {
	return &JourneyHandler{journeys: journeys}
}

func (h *JourneyHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.stored)
	router.GET("/:id/flights", h.flights)
}

func (h *JourneyHandler) stored(c *gin.Context) {
	from := c.Query("from")
	if from == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from query parameter is required"})
		return
	}
	periodStart, err := time.Parse("2006-01-02", c.Query("period_start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start, expected YYYY-MM-DD"})
		return
	}
	periodEnd, err := time.Parse("2006-01-02", c.Query("period_end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end, expected YYYY-MM-DD"})
		return
	}

	aggregates, err := h.journeys.StoredJourneys(c.Request.Context(), from, c.Query("to"), periodStart, periodEnd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toJourneyViews(aggregates))
}

func (h *JourneyHandler) flights(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	flights, err := h.journeys.JourneyFlights(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toFlightViews(flights))
}

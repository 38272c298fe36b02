package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/Domenick1991/faresearch/internal/service/airports"
	"github.com/gin-gonic/gin"
)

type AirportHandler struct {
	service airports.AirportUseCase
}

func NewAirportHandler(service airports.AirportUseCase) *AirportHandler {
	return &AirportHandler{service: service}
}

func (h *AirportHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:code/connections", h.connections)
	router.GET("/:code/location", h.location)
}

func (h *AirportHandler) list(c *gin.Context) {
	codes, err := h.service.AirportCodes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, codes)
}

func (h *AirportHandler) connections(c *gin.Context) {
	code := c.Param("code")
	connections, err := h.service.ConnectedAirports(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, connections)
}

func (h *AirportHandler) location(c *gin.Context) {
	code := c.Param("code")
	loc, err := h.service.LocationByAirport(c.Request.Context(), code)
	if err != nil {
		var notFoundErr *domain.NotFoundError
		if errors.As(err, &notFoundErr) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": loc.Name, "country": loc.Country})
}

type LocationHandler struct {
	service airports.AirportUseCase
}

func NewLocationHandler(service airports.AirportUseCase) *LocationHandler {
	return &LocationHandler{service: service}
}

func (h *LocationHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:location/airports", h.airportsForLocation)
}

func (h *LocationHandler) list(c *gin.Context) {
	locations, err := h.service.Locations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type locationResponse struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	resp := make([]locationResponse, 0, len(locations))
	for _, loc := range locations {
		resp = append(resp, locationResponse{Name: loc.Name, Country: loc.Country})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LocationHandler) airportsForLocation(c *gin.Context) {
	location := c.Param("location")
	codes, err := h.service.AirportsForLocation(c.Request.Context(), location)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(codes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no airports found for the given location"})
		return
	}
	c.JSON(http.StatusOK, codes)
}

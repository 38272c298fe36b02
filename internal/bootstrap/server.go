package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/faresearch/api"
	"github.com/Domenick1991/faresearch/config"
	"github.com/Domenick1991/faresearch/internal/metrics"
	"github.com/Domenick1991/faresearch/internal/service/airports"
	"github.com/Domenick1991/faresearch/internal/service/search"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, searchSvc search.SearchUseCase, airportSvc airports.AirportUseCase, journeys api.JourneyReader, log *logrus.Logger) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, searchSvc, airportSvc, journeys),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	log.WithField("address", cfg.HTTP.Address).Info("http server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, searchSvc search.SearchUseCase, airportSvc airports.AirportUseCase, journeys api.JourneyReader) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api.NewSearchHandler(searchSvc).Register(router.Group("/search"))
	api.NewAirportHandler(airportSvc).Register(router.Group("/airports"))
	api.NewLocationHandler(airportSvc).Register(router.Group("/locations"))
	api.NewJourneyHandler(journeys).Register(router.Group("/journeys"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFile("/openapi.json", cfg.HTTP.SwaggerDir+"/openapi.json")
		router.GET("/docs/*any", gin.WrapH(http.StripPrefix("/docs", httpSwagger.Handler(
			httpSwagger.URL("/openapi.json"),
		))))
	}

	return router
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/faresearch/config"
	"github.com/Domenick1991/faresearch/internal/bootstrap"
	"github.com/Domenick1991/faresearch/internal/cache"
	"github.com/Domenick1991/faresearch/internal/kafka"
	"github.com/Domenick1991/faresearch/internal/provider"
	"github.com/Domenick1991/faresearch/internal/repository"
	"github.com/Domenick1991/faresearch/internal/service/airports"
	"github.com/Domenick1991/faresearch/internal/service/itinerary"
	"github.com/Domenick1991/faresearch/internal/service/persist"
	"github.com/Domenick1991/faresearch/internal/service/routes"
	"github.com/Domenick1991/faresearch/internal/service/search"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool, "migrations"); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Search.GraphCacheTTLSecs)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	airportRepo := repository.NewAirportRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	journeyRepo := repository.NewJourneyRepository(pool)

	fareClient := provider.NewClient(cfg.Provider)

	airportSvc := airports.NewAirportService(airportRepo, redisCache, log)
	finder := routes.NewFinder(airportSvc, log)
	builder := itinerary.NewBuilder(fareClient, cfg.Search.MaxOptionsPerSegment, log)
	orchestrator := persist.NewOrchestrator(flightRepo, journeyRepo, producer, cfg.Kafka.JourneysTopic, cfg.Provider.Aircompany, log)
	searchSvc := search.NewSearchService(airportSvc, finder, builder, fareClient, orchestrator, journeyRepo, cfg.Provider.PriceCeiling, log)

	if err := bootstrap.Run(ctx, cfg, searchSvc, airportSvc, journeyRepo, log); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

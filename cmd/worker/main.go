package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/faresearch/config"
	"github.com/Domenick1991/faresearch/internal/kafka"
	"github.com/Domenick1991/faresearch/internal/notify"
	"github.com/Domenick1991/faresearch/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
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

	flightRepo := repository.NewFlightRepository(pool)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.JourneysTopic)
	defer consumer.Close()

	sender := notify.NewSender(log)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.JourneyEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.WithError(err).Warn("decode journey event")
				return nil
			}
			return sender.Send(ctx, event)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Duration(cfg.Worker.FlightSweepMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				purged, err := flightRepo.PurgeDepartedUnlinked(ctx, time.Now().UTC())
				if err != nil {
					log.WithError(err).Error("purge departed flights")
					continue
				}
				if purged > 0 {
					log.WithField("count", purged).Info("purged departed flights")
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Fatalf("worker stopped: %v", err)
	}
	log.Info("worker shut down")
}

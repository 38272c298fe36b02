package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/faresearch/config"
	"github.com/Domenick1991/faresearch/internal/domain"
	"github.com/Domenick1991/faresearch/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jszwec/csvutil"
	"github.com/sirupsen/logrus"
)

// seed loads the reference data the resolver depends on: locations, the
// airports that belong to them, and the directed connection graph.
//
//	seed -airports airports.csv -connections connections.csv
//
// airports.csv:    code,location,country
// connections.csv: origin,destination
type airportRow struct {
	Code     string `csv:"code"`
	Location string `csv:"location"`
	Country  string `csv:"country"`
}

type connectionRow struct {
	Origin      string `csv:"origin"`
	Destination string `csv:"destination"`
}

func main() {
	_ = godotenv.Load()

	log := logrus.New()

	airportsPath := flag.String("airports", "airports.csv", "airports csv file")
	connectionsPath := flag.String("connections", "connections.csv", "connections csv file")
	flag.Parse()

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

	repo := repository.NewAirportRepository(pool)

	airports, err := readCSV[airportRow](*airportsPath)
	if err != nil {
		log.Fatalf("read airports: %v", err)
	}
	for _, a := range airports {
		loc := domain.Location{Name: a.Location, Country: a.Country}
		if err := repo.InsertLocation(ctx, loc); err != nil {
			log.Fatalf("insert location %s: %v", a.Location, err)
		}
		if err := repo.InsertAirport(ctx, a.Code, a.Location, a.Country); err != nil {
			log.Fatalf("insert airport %s: %v", a.Code, err)
		}
	}
	log.Infof("seeded %d airports", len(airports))

	connections, err := readCSV[connectionRow](*connectionsPath)
	if err != nil {
		log.Fatalf("read connections: %v", err)
	}
	for _, c := range connections {
		if err := repo.InsertConnection(ctx, c.Origin, c.Destination); err != nil {
			log.Fatalf("insert connection %s-%s: %v", c.Origin, c.Destination, err)
		}
	}
	log.Infof("seeded %d connections", len(connections))
}

func readCSV[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Provider ProviderConfig `yaml:"provider"`
	Search   SearchConfig   `yaml:"search"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	password := d.Password
	if env := os.Getenv("DATABASE_PASSWORD"); env != "" {
		password = env
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	JourneysTopic string   `yaml:"journeys_topic"`
	GroupID       string   `yaml:"group_id"`
}

type ProviderConfig struct {
	FaresBaseURL  string  `yaml:"fares_base_url"`
	SearchBaseURL string  `yaml:"search_base_url"`
	Aircompany    string  `yaml:"aircompany"`
	TimeoutSecs   int     `yaml:"timeout_seconds"`
	PriceCeiling  float64 `yaml:"price_ceiling"`
}

type SearchConfig struct {
	MaxOptionsPerSegment int `yaml:"max_options_per_segment"`
	GraphCacheTTLSecs    int `yaml:"graph_cache_ttl_seconds"`
}

type WorkerConfig struct {
	FlightSweepMinutes int `yaml:"flight_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Search.MaxOptionsPerSegment <= 0 {
		cfg.Search.MaxOptionsPerSegment = 5
	}
	if cfg.Provider.TimeoutSecs <= 0 {
		cfg.Provider.TimeoutSecs = 10
	}
	if cfg.Provider.PriceCeiling <= 0 {
		cfg.Provider.PriceCeiling = 2000
	}
	if cfg.Worker.FlightSweepMinutes <= 0 {
		cfg.Worker.FlightSweepMinutes = 60
	}

	return &cfg, nil
}

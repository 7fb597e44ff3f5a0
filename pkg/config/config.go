package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StoreMemory = "map"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreValkey = "valkey"
)

type (
	Config struct {
		Seeder    Seeder    `envPrefix:"SEEDER_"`
		HTTP      HTTP      `envPrefix:"HTTP_"`
		Logger    Logger    `envPrefix:"LOGGER_"`
		Telemetry Telemetry `envPrefix:"TELEMETRY_"`
		Store     Store     `envPrefix:"STORE_"`
		Redis     Redis     `envPrefix:"REDIS_"`
		Valkey    Valkey    `envPrefix:"VALKEY_"`
		SQLite    SQLite    `envPrefix:"SQLITE_"`
	}

	Seeder struct {
		Layer          string        `env:"LAYER"`
		URLFormat      string        `env:"URL_FORMAT" validate:"required"`
		Version        string        `env:"VERSION" validate:"omitempty,oneof=1.1.1 1.3.0"`
		TileSize       int           `env:"TILE_SIZE" envDefault:"256" validate:"gt=0"`
		GutterSize     int           `env:"GUTTER_SIZE" envDefault:"20" validate:"gte=0"`
		Endpoint       string        `env:"ENDPOINT" validate:"omitempty,url"`
		MaxThreads     int           `env:"MAX_THREADS" envDefault:"8" validate:"gte=1"`
		MinZoom        int           `env:"MIN_ZOOM" envDefault:"0" validate:"gte=0,lte=30"`
		MaxZoom        int           `env:"MAX_ZOOM" envDefault:"5" validate:"gte=0,lte=30,gtefield=MinZoom"`
		DryRun         bool          `env:"DRY_RUN" envDefault:"false"`
		Resume         bool          `env:"RESUME" envDefault:"false"`
		RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
		UserAgent      string        `env:"USER_AGENT" envDefault:"GuideHelperSeeder/1.0 (https://github.com/jaennil/guide_helper)"`
	}

	HTTP struct {
		Server Server `envPrefix:"SERVER_"`
	}

	Server struct {
		Port         string        `env:"PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	}

	Logger struct {
		Level string `env:"LEVEL" envDefault:"info"`
	}

	Telemetry struct {
		Enabled        bool   `env:"ENABLED" envDefault:"false"`
		ServiceName    string `env:"SERVICE_NAME" envDefault:"guide-helper-seeder"`
		ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
		Environment    string `env:"ENVIRONMENT" envDefault:"production"`
		OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"otel-collector.observability.svc.cluster.local:4317"`
	}

	Store struct {
		Driver string `env:"DRIVER" envDefault:"map" validate:"oneof=map sqlite redis valkey"`
	}

	Redis struct {
		Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
		Password string        `env:"PASSWORD" envDefault:""`
		DB       int           `env:"DB" envDefault:"0"`
		TTL      time.Duration `env:"TTL" envDefault:"168h"`
	}

	Valkey struct {
		Addr string        `env:"ADDR" envDefault:"localhost:6379"`
		TTL  time.Duration `env:"TTL" envDefault:"168h"`
	}

	SQLite struct {
		Path string `env:"PATH" envDefault:"seed_progress.db"`
	}
)

func New() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads .env and the environment without validating, for callers
// that still apply overrides.
func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the tags of every section.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

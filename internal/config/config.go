// Package config loads process configuration from environment variables.
// Each binary owns one struct; shared infra values are embedded.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Telemetry struct {
	OTLPEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceVersion string `envconfig:"SERVICE_VERSION" default:"0.1.0"`
	MetricsPort    string `envconfig:"METRICS_PORT" default:"9464"`
}

type API struct {
	Telemetry

	Port           string        `envconfig:"PORT" default:"9000"`
	Environment    string        `envconfig:"NODE_ENV" default:"development"`
	PostgresURL    string        `envconfig:"POSTGRES_URL" required:"true"`
	TokenSecret    string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"8760h"`
	AllowedOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:5174"`
	KafkaBrokers   []string      `envconfig:"KAFKA_BROKERS"`
	OrdersTopic    string        `envconfig:"ORDERS_TOPIC" default:"plantnet.orders"`
}

// Production reports whether cookies must be issued cross-site and secure.
func (c API) Production() bool {
	return c.Environment == "production"
}

type Worker struct {
	Telemetry

	KafkaBrokers    []string `envconfig:"KAFKA_BROKERS" required:"true"`
	OrdersTopic     string   `envconfig:"ORDERS_TOPIC" default:"plantnet.orders"`
	ConsumerGroup   string   `envconfig:"CONSUMER_GROUP" default:"order-notifier"`
	EmailServiceURL string   `envconfig:"EMAIL_SERVICE_URL" required:"true"`
}

type Email struct {
	Port string `envconfig:"PORT" default:"8084"`
}

type Migrate struct {
	PostgresURL    string `envconfig:"POSTGRES_URL" required:"true"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"file://migrations"`
}

func LoadAPI() (API, error) {
	var c API
	if err := load(&c); err != nil {
		return c, err
	}
	return c, nil
}

func LoadWorker() (Worker, error) {
	var c Worker
	if err := load(&c); err != nil {
		return c, err
	}
	return c, nil
}

func LoadEmail() (Email, error) {
	var c Email
	if err := load(&c); err != nil {
		return c, err
	}
	return c, nil
}

func LoadMigrate() (Migrate, error) {
	var c Migrate
	if err := load(&c); err != nil {
		return c, err
	}
	return c, nil
}

func load(spec any) error {
	if err := envconfig.Process("", spec); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

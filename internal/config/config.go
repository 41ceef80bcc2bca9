// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Directory drivers.
const (
	DirectoryRTDB     = "rtdb"
	DirectoryPostgres = "postgres"
	DirectoryMemory   = "memory"
)

// Notification drivers.
const (
	NotifyFonnte = "fonnte"
	NotifyOutbox = "outbox"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :3001).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address of the gRPC health server; empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// AppName is shown to users in the reset notification.
	AppName  string `mapstructure:"APP_NAME"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// DirectoryDriver selects the user/operator store: rtdb, postgres or memory.
	DirectoryDriver string `mapstructure:"DIRECTORY_DRIVER"`
	// FirebaseDatabaseURL is the Realtime Database root, e.g. https://<project>.firebaseio.com.
	FirebaseDatabaseURL string `mapstructure:"FIREBASE_DATABASE_URL"`
	// FirebaseAuthToken is sent as ?auth= on every RTDB request when set.
	FirebaseAuthToken string `mapstructure:"FIREBASE_AUTH_TOKEN"`
	// DatabaseURL is the Postgres DSN used by the postgres driver and cmd/migrate.
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	UsersPath     string `mapstructure:"USERS_PATH"`
	OperatorsPath string `mapstructure:"OPERATORS_PATH"`
	// UpstreamTimeout bounds each directory and gateway call (e.g. "10s").
	UpstreamTimeout string `mapstructure:"UPSTREAM_TIMEOUT"`

	// NotifyDriver selects the gateway: fonnte, or outbox (dev only, messages readable at GET /dev/outbox/:phone).
	NotifyDriver      string `mapstructure:"NOTIFY_DRIVER"`
	FonnteAPIKey      string `mapstructure:"FONNTE_API_KEY"`
	FonnteBaseURL     string `mapstructure:"FONNTE_BASE_URL"`
	FonnteAuthScheme  string `mapstructure:"FONNTE_AUTH_SCHEME"`
	FonnteCountryCode string `mapstructure:"FONNTE_COUNTRY_CODE"`
	// NotifyRelayEnabled mounts POST /api/notify/fonnte, which sends any text to any number.
	NotifyRelayEnabled bool `mapstructure:"NOTIFY_RELAY_ENABLED"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	// Telemetry (optional). OTLP export is enabled when the endpoint is set.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// MockFonnteAddr is the listen address of cmd/mockfonnte.
	MockFonnteAddr string `mapstructure:"MOCK_FONNTE_ADDR"`
}

var defaults = map[string]any{
	"HTTP_ADDR":                   ":3001",
	"GRPC_ADDR":                   ":8080",
	"APP_ENV":                     "development",
	"APP_NAME":                    "AI Planner",
	"LOG_LEVEL":                   "info",
	"DIRECTORY_DRIVER":            DirectoryRTDB,
	"FIREBASE_DATABASE_URL":       "",
	"FIREBASE_AUTH_TOKEN":         "",
	"DATABASE_URL":                "",
	"USERS_PATH":                  "users",
	"OPERATORS_PATH":              "operator",
	"UPSTREAM_TIMEOUT":            "10s",
	"NOTIFY_DRIVER":               NotifyFonnte,
	"FONNTE_API_KEY":              "",
	"FONNTE_BASE_URL":             "https://api.fonnte.com",
	"FONNTE_AUTH_SCHEME":          "Bearer",
	"FONNTE_COUNTRY_CODE":         "62",
	"NOTIFY_RELAY_ENABLED":        false,
	"GEMINI_API_KEY":              "",
	"GEMINI_MODEL":                "gemini-2.0-flash",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_EXPORTER_OTLP_INSECURE": false,
	"KAFKA_BROKERS":               "",
	"TELEMETRY_KAFKA_TOPIC":       "ai-planner-telemetry",
	"LOKI_URL":                    "",
	"KAFKA_GROUP_ID":              "ai-planner-telemetry-worker",
	"MOCK_FONNTE_ADDR":            ":5000",
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.DirectoryDriver = strings.ToLower(strings.TrimSpace(cfg.DirectoryDriver))
	cfg.NotifyDriver = strings.ToLower(strings.TrimSpace(cfg.NotifyDriver))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	switch c.DirectoryDriver {
	case DirectoryRTDB:
		if c.FirebaseDatabaseURL == "" {
			return errors.New("config: FIREBASE_DATABASE_URL must be set when DIRECTORY_DRIVER=rtdb")
		}
	case DirectoryPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set when DIRECTORY_DRIVER=postgres")
		}
	case DirectoryMemory:
		if c.IsProduction() {
			return errors.New("config: DIRECTORY_DRIVER=memory must not be used when APP_ENV=production")
		}
	default:
		return fmt.Errorf("config: unknown DIRECTORY_DRIVER %q", c.DirectoryDriver)
	}
	switch c.NotifyDriver {
	case NotifyFonnte:
	case NotifyOutbox:
		if c.IsProduction() {
			return errors.New("config: NOTIFY_DRIVER=outbox must not be used when APP_ENV=production")
		}
	default:
		return fmt.Errorf("config: unknown NOTIFY_DRIVER %q", c.NotifyDriver)
	}
	if strings.Trim(c.UsersPath, "/ ") == "" || strings.Trim(c.OperatorsPath, "/ ") == "" {
		return errors.New("config: USERS_PATH and OPERATORS_PATH must not be empty")
	}
	if d, err := time.ParseDuration(c.UpstreamTimeout); err != nil || d <= 0 {
		return fmt.Errorf("config: UPSTREAM_TIMEOUT %q is not a positive duration", c.UpstreamTimeout)
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// Timeout parses UpstreamTimeout. Returns 10s if unset or invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.UpstreamTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

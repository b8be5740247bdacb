package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "DASHBOARD"

type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Dataset   DatasetConfig   `envconfig:"DATASET"`
	Logger    LoggerConfig    `envconfig:"LOG"`
	Security  SecurityConfig  `envconfig:"SECURITY"`
	Telemetry TelemetryConfig `envconfig:"TELEMETRY"`
}

type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"8084"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatasetConfig points at the single input file read once per process.
type DatasetConfig struct {
	CSVFile     string        `envconfig:"CSV_FILE" default:"your_final_dataset.csv"`
	LoadTimeout time.Duration `envconfig:"LOAD_TIMEOUT" default:"30s"`
	TableLimit  int           `envconfig:"TABLE_LIMIT" default:"500"`
}

type LoggerConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRPS    int      `envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int      `envconfig:"RATE_LIMIT_BURST" default:"10"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8084"`
	TrustedProxies  []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
}

type TelemetryConfig struct {
	TracingEnabled bool   `envconfig:"TRACING_ENABLED" default:"false"`
	ServiceName    string `envconfig:"SERVICE_NAME" default:"sales-dashboard"`
}

// Load reads an optional .env file, then the DASHBOARD_* environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Dataset.CSVFile == "" {
		return fmt.Errorf("CSV file path cannot be empty")
	}

	if c.Dataset.LoadTimeout <= 0 {
		return fmt.Errorf("dataset load timeout must be positive")
	}

	if c.Dataset.TableLimit <= 0 {
		return fmt.Errorf("table limit must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/validator"
	"github.com/joho/godotenv"
)

// Dataset source kinds accepted in DATASET_SOURCES
const (
	SourceCSV      = "csv"
	SourceXLSX     = "xlsx"
	SourcePostgres = "postgres"
)

var sourceKinds = []string{SourceCSV, SourceXLSX, SourcePostgres}

type Config struct {
	App      AppConfig
	CORS     CORSConfig
	Dataset  DatasetConfig
	Database DatabaseConfig
	JWT      JWTConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name     string
	Port     int
	Env      string
	LogLevel slog.Level
}

type CORSConfig struct {
	AllowedOrigins []string
}

// DatasetConfig lists where production records are read from at startup
type DatasetConfig struct {
	BasePath string
	Sources  []SourceConfig
}

// SourceConfig is one entry of DATASET_SOURCES, e.g. "csv:dados.csv" or "xlsx:book.xlsx#Producao"
type SourceConfig struct {
	Kind  string
	Path  string
	Sheet string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds JWT configuration. An empty Secret disables authentication.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

func Load() (*Config, error) {
	// .env is optional; the process may get its environment from the container
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	config.App = AppConfig{
		Name:     getEnv("APP_NAME", "production-dashboard"),
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: logLevel,
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// Dataset configuration
	sources, err := ParseSources(getEnvSlice("DATASET_SOURCES", "csv:dados_consolidados.csv"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATASET_SOURCES: %w", err)
	}

	config.Dataset = DatasetConfig{
		BasePath: getEnv("DATASET_BASE_PATH", "."),
		Sources:  sources,
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	dbMaxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "4"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "production"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
	}

	// JWT configuration
	jwtExpiration, err := time.ParseDuration(getEnv("JWT_EXPIRATION_TIME", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:     getEnv("JWT_SECRET_KEY", ""),
		Expiration: jwtExpiration,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	if len(c.Dataset.Sources) == 0 {
		return fmt.Errorf("DATASET_SOURCES is required")
	}
	if c.UsesPostgres() {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres dataset source")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required for the postgres dataset source")
		}
	}
	if c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters")
	}
	return nil
}

// UsesPostgres reports whether any dataset source reads from the database
func (c *Config) UsesPostgres() bool {
	for _, src := range c.Dataset.Sources {
		if src.Kind == SourcePostgres {
			return true
		}
	}
	return false
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ParseSources parses entries of the form "kind:path[#sheet]" or "postgres"
func ParseSources(entries []string) ([]SourceConfig, error) {
	sources := make([]SourceConfig, 0, len(entries))
	for _, entry := range entries {
		kind, path, _ := strings.Cut(entry, ":")
		kind = strings.ToLower(strings.TrimSpace(kind))
		path = strings.TrimSpace(path)

		if !validator.IsInSlice(kind, sourceKinds) {
			return nil, fmt.Errorf("%w %q in %q", production.ErrUnknownSourceKind, kind, entry)
		}

		src := SourceConfig{Kind: kind}
		switch kind {
		case SourcePostgres:
			if path != "" {
				return nil, fmt.Errorf("postgres source takes no path: %q", entry)
			}
		case SourceXLSX:
			src.Path, src.Sheet, _ = strings.Cut(path, "#")
		default:
			src.Path = path
		}

		if kind != SourcePostgres && validator.IsEmpty(src.Path) {
			return nil, fmt.Errorf("missing path in %q", entry)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	return validator.SplitList(getEnv(key, fallback))
}

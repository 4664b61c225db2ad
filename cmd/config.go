package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the process settings. Every field has an environment variable;
// see LoadConfig for names and defaults.
type Config struct {
	HTTPPort string

	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	SQLitePath string

	TaxRate       decimal.Decimal
	DecimalPlaces int32

	JWTSecret          string
	RequestTimeout     time.Duration
	BusBufferSize      int
	PersistenceRetries int

	// RedisAddr enables the Redis idempotency store; empty keeps keys in memory.
	RedisAddr      string
	IdempotencyTTL time.Duration

	// AMQPURL enables the broker relay; empty disables it.
	AMQPURL      string
	AMQPExchange string

	LogFile  string
	LogLevel string

	SeedMenu          bool
	LockSweepSchedule string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (Config, error) {
	env := envReader{getenv: getenv}

	cfg := Config{
		HTTPPort:           env.str("HTTP_PORT", "8080"),
		DBDriver:           strings.ToLower(env.str("DB_DRIVER", "postgres")),
		DBHost:             env.str("DB_HOST", "localhost"),
		DBPort:             env.str("DB_PORT", "5432"),
		DBUser:             env.str("DB_USER", "postgres"),
		DBPassword:         env.str("DB_PASSWORD", ""),
		DBName:             env.str("DB_NAME", "tableorder"),
		DBSslMode:          env.str("DB_SSLMODE", "disable"),
		SQLitePath:         env.str("SQLITE_PATH", "tableorder.db"),
		TaxRate:            env.decimal("TAX_RATE", "0.08"),
		DecimalPlaces:      int32(env.int("DECIMAL_PLACES", 2)),
		JWTSecret:          env.str("JWT_SECRET", ""),
		RequestTimeout:     env.duration("REQUEST_TIMEOUT", 10*time.Second),
		BusBufferSize:      env.int("BUS_BUFFER_SIZE", 64),
		PersistenceRetries: env.int("PERSISTENCE_RETRIES", 2),
		RedisAddr:          env.str("REDIS_ADDR", ""),
		IdempotencyTTL:     env.duration("IDEMPOTENCY_TTL", 24*time.Hour),
		AMQPURL:            env.str("AMQP_URL", ""),
		AMQPExchange:       env.str("AMQP_EXCHANGE", "orders_topic"),
		LogFile:            env.str("LOG_FILE", ""),
		LogLevel:           env.str("LOG_LEVEL", "info"),
		SeedMenu:           env.bool("SEED_MENU", false),
		LockSweepSchedule:  env.str("LOCK_SWEEP_SCHEDULE", "0 * * * * *"),
	}

	if err := errors.Join(env.errs...); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	var problems []error

	if c.JWTSecret == "" {
		problems = append(problems, errors.New("JWT_SECRET is required"))
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		problems = append(problems, fmt.Errorf("DB_DRIVER %q is not postgres or sqlite", c.DBDriver))
	}
	if c.PersistenceRetries < 0 {
		problems = append(problems, errors.New("PERSISTENCE_RETRIES must not be negative"))
	}
	if c.BusBufferSize <= 0 {
		problems = append(problems, errors.New("BUS_BUFFER_SIZE must be positive"))
	}

	return errors.Join(problems...)
}

// PostgresDSN is the connection string for gorm's postgres driver.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func (r *envReader) str(key, fallback string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (r *envReader) int(key string, fallback int) int {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (r *envReader) bool(key string, fallback bool) bool {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (r *envReader) decimal(key, fallback string) decimal.Decimal {
	v, err := decimal.NewFromString(r.str(key, fallback))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return decimal.RequireFromString(fallback)
	}
	return v
}

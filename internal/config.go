package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Seed          SeedConfig          `mapstructure:"seed"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type AppConfig struct {
	Env string `mapstructure:"env" validate:"required,oneof=development production test"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=sqlite postgres mysql"`
	Source          string        `mapstructure:"source" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type SecurityConfig struct {
	SessionSecret string        `mapstructure:"session_secret" validate:"required,min=32"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" validate:"required,min=1m"`
	SessionFile   string        `mapstructure:"session_file" validate:"required"`
	BCryptCost    int           `mapstructure:"bcrypt_cost" validate:"min=4,max=15"`
}

type CacheConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=memory redis"`
	FreshnessWindow time.Duration `mapstructure:"freshness_window" validate:"required"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	Redis           RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

type SeedConfig struct {
	OnStartup bool `mapstructure:"on_startup"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// Defaults returns the settings used when no config file is present: a local
// sqlite database, an in-process ticket cache and a five minute window.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.env":                      "development",
		"database.driver":              "sqlite",
		"database.source":              "file:ticketing.db?_foreign_keys=on",
		"database.max_open_conns":      1,
		"database.max_idle_conns":      1,
		"database.conn_max_lifetime":   "30m",
		"database.conn_max_idle_time":  "5m",
		"database.query_timeout":       "10s",
		"database.auto_migrate":        true,
		"security.session_secret":      "change-me-change-me-change-me-32+",
		"security.session_ttl":         "12h",
		"security.session_file":        defaultSessionFile(),
		"security.bcrypt_cost":         10,
		"cache.driver":                 "memory",
		"cache.freshness_window":       "5m",
		"cache.key_prefix":             "ticketing:",
		"cache.redis.addr":             "localhost:6379",
		"cache.redis.password":         "",
		"cache.redis.db":               0,
		"seed.on_startup":              true,
		"observability.logging.level":  "warn",
		"observability.logging.format": "text",
	}
}

// LoadConfigFromEnv builds a configuration purely from TICKETING_* variables.
func LoadConfigFromEnv() *Config {
	return &Config{
		App: AppConfig{Env: getEnv("TICKETING_APP_ENV", "production")},
		Database: DatabaseConfig{
			Driver:          getEnv("TICKETING_DATABASE_DRIVER", "postgres"),
			Source:          getEnv("TICKETING_DATABASE_SOURCE", ""),
			MaxOpenConns:    getEnvAsInt("TICKETING_DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("TICKETING_DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("TICKETING_DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("TICKETING_DATABASE_CONN_MAX_IDLE_TIME", 5*time.Minute),
			QueryTimeout:    getEnvAsDuration("TICKETING_DATABASE_QUERY_TIMEOUT", 10*time.Second),
			AutoMigrate:     getEnv("TICKETING_DATABASE_AUTO_MIGRATE", "false") == "true",
		},
		Security: SecurityConfig{
			SessionSecret: getEnv("TICKETING_SECURITY_SESSION_SECRET", ""),
			SessionTTL:    getEnvAsDuration("TICKETING_SECURITY_SESSION_TTL", 12*time.Hour),
			SessionFile:   getEnv("TICKETING_SECURITY_SESSION_FILE", defaultSessionFile()),
			BCryptCost:    getEnvAsInt("TICKETING_SECURITY_BCRYPT_COST", 12),
		},
		Cache: CacheConfig{
			Driver:          getEnv("TICKETING_CACHE_DRIVER", "memory"),
			FreshnessWindow: getEnvAsDuration("TICKETING_CACHE_FRESHNESS_WINDOW", 5*time.Minute),
			KeyPrefix:       getEnv("TICKETING_CACHE_KEY_PREFIX", "ticketing:"),
			Redis: RedisConfig{
				Addr:     getEnv("TICKETING_CACHE_REDIS_ADDR", "localhost:6379"),
				Password: getEnv("TICKETING_CACHE_REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("TICKETING_CACHE_REDIS_DB", 0),
			},
		},
		Seed: SeedConfig{OnStartup: getEnv("TICKETING_SEED_ON_STARTUP", "false") == "true"},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("TICKETING_OBSERVABILITY_LOGGING_LEVEL", "info"),
				Format: getEnv("TICKETING_OBSERVABILITY_LOGGING_FORMAT", "json"),
			},
		},
	}
}

// ----------------- HELPERS -----------------

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ticketing-session"
	}
	return filepath.Join(dir, "ticketing", "session")
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("cache config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	if c.Driver == "sqlite" && c.MaxOpenConns > 1 && strings.Contains(c.Source, ":memory:") {
		return errors.New("in-memory sqlite needs max_open_conns=1")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *CacheConfig) Validate() error {
	if c.FreshnessWindow <= 0 {
		return errors.New("freshness_window must be positive")
	}
	if c.Driver == "redis" && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when driver is redis")
	}
	return nil
}

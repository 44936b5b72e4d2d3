package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "config")

// LoadDotEnv reads a .env file if one is present in the working directory.
// A missing file is not an error so containerized deployments can rely on
// real environment variables alone.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("Could not load .env file")
		}
		return
	}
	log.Debug("Loaded environment from .env")
}

// RedisSettings holds connection parameters for the cache store and the
// task broker, both of which share the same redis instance.
type RedisSettings struct {
	Host string
	Port int
	DB   int
}

// RedisSettingsFromEnv reads REDIS_HOST, REDIS_PORT and REDIS_DB with the
// documented defaults.
func RedisSettingsFromEnv() *RedisSettings {
	return &RedisSettings{
		Host: envString("REDIS_HOST", "redis"),
		Port: envInt("REDIS_PORT", 6379),
		DB:   envInt("REDIS_DB", 0),
	}
}

// Addr returns host:port for redis clients.
func (r *RedisSettings) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BrokerURL renders the redis URL consumed by the task runtime.
func (r *RedisSettings) BrokerURL() string {
	return fmt.Sprintf("redis://%s:%d/%d", r.Host, r.Port, r.DB)
}

// PostgresSettings holds catalog database connection parameters.
type PostgresSettings struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Driver   string
}

// PostgresSettingsFromEnv reads POSTGRES_DB, POSTGRES_USER,
// POSTGRES_PASSWORD, DRIVER_NAME and PORT with the documented defaults.
func PostgresSettingsFromEnv() *PostgresSettings {
	return &PostgresSettings{
		Host:     envString("POSTGRES_HOST", "db"),
		Port:     envInt("PORT", 5432),
		Database: envString("POSTGRES_DB", "postgres"),
		User:     envString("POSTGRES_USER", "postgres"),
		Password: envString("POSTGRES_PASSWORD", "root"),
		Driver:   envString("DRIVER_NAME", "postgresql"),
	}
}

// URL renders a connection string understood by pgx.
func (p *PostgresSettings) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

// BatchSettings parameterizes one discovery run.
type BatchSettings struct {
	// ChunkSize caps the number of concurrent exchange fetches in flight.
	ChunkSize int
	// Threshold is the minimum count of exchanges quoting a pair for it
	// to be considered arbitrable.
	Threshold int
	// Interval is the candle bucket size requested from exchanges.
	Interval string
	// OHLCTTL bounds cached batch payload lifetime. Must exceed the
	// worst-case gap between caching a payload and the compute task
	// consuming it.
	OHLCTTL time.Duration
	// ChunkSleep paces external APIs between chunk fan-outs.
	ChunkSleep time.Duration
}

// DefaultBatchSettings returns the settings used when flags do not
// override them.
func DefaultBatchSettings() *BatchSettings {
	return &BatchSettings{
		ChunkSize:  100,
		Threshold:  2,
		Interval:   "4h",
		OHLCTTL:    2 * time.Hour,
		ChunkSleep: time.Second,
	}
}

// DisplayLocation resolves the optional TIMEZONE variable used to render
// spread timestamps. Falls back to UTC on absence or parse failure.
func DisplayLocation() *time.Location {
	name := os.Getenv("TIMEZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.WithError(err).WithField("timezone", name).Warn("Unknown TIMEZONE, using UTC")
		return time.UTC
	}
	return loc
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.WithField("variable", key).WithError(err).Warnf("Invalid integer, using default %d", def)
		return def
	}
	return n
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	MetricsAddr string
	Environment string
	LogLevel    string

	Store    string
	Redis    RedisConfig
	Database DatabaseConfig

	JWTSigningKey       string
	AnchorsFile         string
	AllowVerifierBypass bool
	MaxPathDepth        int

	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// RedisConfig configures the Redis trust store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures the Postgres trust store.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

const devSigningKey = "dev-secret-key-change-in-production"

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numeric or duration values keep their defaults.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        envOr("TRUST_REGISTRY_ADDR", ":8080"),
		MetricsAddr: metricsAddr(),
		Environment: envOr("ENVIRONMENT", "development"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		Store:       strings.ToLower(envOr("TRUST_STORE", StoreMemory)),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		JWTSigningKey:       envOr("JWT_SIGNING_KEY", devSigningKey),
		AnchorsFile:         os.Getenv("TRUST_ANCHORS_FILE"),
		AllowVerifierBypass: envBool("TRUST_ALLOW_VERIFIER_BYPASS", true),
		MaxPathDepth:        envInt("TRUST_MAX_PATH_DEPTH", 0),
		RequestTimeout:      envDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxBodyBytes:        int64(envInt("MAX_BODY_BYTES", 1<<20)),
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreRedis:
		if cfg.Redis.URL == "" {
			return cfg, fmt.Errorf("TRUST_STORE=redis requires REDIS_URL")
		}
	case StorePostgres:
		if cfg.Database.URL == "" {
			return cfg, fmt.Errorf("TRUST_STORE=postgres requires DATABASE_URL")
		}
	default:
		return cfg, fmt.Errorf("unknown TRUST_STORE %q", cfg.Store)
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in a production environment.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// UsesDevSigningKey reports whether JWT_SIGNING_KEY was left unset.
func (s Server) UsesDevSigningKey() bool {
	return s.JWTSigningKey == devSigningKey
}

// metricsAddr distinguishes an unset METRICS_ADDR, which takes the default,
// from an empty one, which disables the metrics listener.
func metricsAddr() string {
	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		return v
	}
	return ":9090"
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

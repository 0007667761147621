package cacheredis

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	envHost     = "REDIS_HOST"
	envPort     = "REDIS_PORT"
	envDatabase = "REDIS_DB"
	envPassword = "REDIS_PASSWORD"
	envTimeout  = "REDIS_TIMEOUT"
)

// DefaultScanCount is the COUNT hint sent with every SCAN round trip.
const DefaultScanCount = 10000

// Config holds connection and behaviour settings for a Client.
type Config struct {
	// Connection target
	Host     string
	Port     int
	Database int    // logical database index
	Password string // optional AUTH secret, never logged

	// Timeout bounds dialing and every command round trip.
	Timeout time.Duration

	// Connection pool
	PoolSize   int // command connection pool size (0 = go-redis default)
	MaxRetries int // driver-level retries on network errors (-1 disables)

	// Scanning
	ScanCount int64 // SCAN COUNT hint

	// Logger receives construction and subscription events (nil = slog.Default()).
	Logger *slog.Logger

	// CircuitBreaker enables a breaker around store round trips when non-nil.
	CircuitBreaker *gobreaker.Settings
}

// DefaultConfig returns a Config pointing at a local Redis on database 0.
func DefaultConfig() *Config {
	return &Config{
		Host:      "127.0.0.1",
		Port:      6379,
		Database:  0,
		Timeout:   5 * time.Second,
		ScanCount: DefaultScanCount,
	}
}

// ConfigFromEnv returns DefaultConfig overridden by REDIS_HOST, REDIS_PORT,
// REDIS_DB, REDIS_PASSWORD and REDIS_TIMEOUT (whole seconds).
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()

	if host := strings.TrimSpace(os.Getenv(envHost)); host != "" {
		cfg.Host = host
	}
	if v := strings.TrimSpace(os.Getenv(envPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, envPort, v, err)
		}
		cfg.Port = port
	}
	if v := strings.TrimSpace(os.Getenv(envDatabase)); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, envDatabase, v, err)
		}
		cfg.Database = db
	}
	if v := os.Getenv(envPassword); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(os.Getenv(envTimeout)); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, envTimeout, v, err)
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the host:port dial target.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks config consistency. It does not modify c; a zero ScanCount
// means DefaultScanCount.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: empty Host", ErrInvalidConfig)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: Port %d out of range", ErrInvalidConfig, c.Port)
	}

	if c.Database < 0 {
		return fmt.Errorf("%w: negative Database", ErrInvalidConfig)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative Timeout", ErrInvalidConfig)
	}

	return c.validateBehaviour()
}

// validateBehaviour checks only the fields a Client uses after it is
// connected.
func (c *Config) validateBehaviour() error {
	if c.PoolSize < 0 {
		return fmt.Errorf("%w: negative PoolSize", ErrInvalidConfig)
	}

	if c.MaxRetries < -1 {
		return fmt.Errorf("%w: MaxRetries below -1", ErrInvalidConfig)
	}

	if c.ScanCount < 0 {
		return fmt.Errorf("%w: negative ScanCount", ErrInvalidConfig)
	}

	return nil
}

func (c *Config) scanCount() int64 {
	if c.ScanCount == 0 {
		return DefaultScanCount
	}
	return c.ScanCount
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

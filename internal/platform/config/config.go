package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAddr         = ":8080"
	DefaultNOTABaseURL  = "https://hmwcdpm2zoz3qxqbsknzm6k5ie0arpgb.lambda-url.eu-north-1.on.aws"
	DefaultNOTATimeout  = 10 * time.Second
	DefaultNOTARetries  = 2
	DefaultBackoffBase  = time.Second
	DefaultCacheTTL     = 15 * time.Minute
	DefaultSweepEvery   = 5 * time.Minute
	DefaultBodyLimit    = 64 << 10
	DefaultBreakerFails = 5
	DefaultBreakerOK    = 2
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
}

// NOTA configures the remote tax calculation service client.
type NOTA struct {
	BaseURL     string
	Timeout     time.Duration
	Retries     int
	BackoffBase time.Duration
	// BreakerFailures consecutive transient failures open the circuit;
	// zero disables the breaker.
	BreakerFailures  int
	BreakerSuccesses int
}

// Cache configures the remote response cache. An empty Redis.URL selects the
// in-process store.
type Cache struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Redis         RedisConfig
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Tax selects the rate tables. TaxYear zero keeps the built-in default year.
type Tax struct {
	TaxYear       int
	RateTablePath string
}

type Config struct {
	Server Server
	NOTA   NOTA
	Cache  Cache
	Tax    Tax
}

// Load reads a .env file when one exists and then builds the configuration
// from the environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables. Unset variables
// take their defaults; malformed ones are errors.
func FromEnv() (Config, error) {
	var p parser
	cfg := Config{
		Server: Server{
			Addr:         p.str("TAXCALC_ADDR", DefaultAddr),
			Environment:  p.str("ENVIRONMENT", "development"),
			MaxBodyBytes: int64(p.int("TAXCALC_MAX_BODY_BYTES", DefaultBodyLimit)),
		},
		NOTA: NOTA{
			BaseURL:          p.str("NOTA_BASE_URL", DefaultNOTABaseURL),
			Timeout:          p.duration("NOTA_TIMEOUT", DefaultNOTATimeout),
			Retries:          p.int("NOTA_RETRIES", DefaultNOTARetries),
			BackoffBase:      p.duration("NOTA_BACKOFF_BASE", DefaultBackoffBase),
			BreakerFailures:  p.int("BREAKER_FAILURES", DefaultBreakerFails),
			BreakerSuccesses: p.int("BREAKER_SUCCESSES", DefaultBreakerOK),
		},
		Cache: Cache{
			TTL:           p.duration("CACHE_TTL", DefaultCacheTTL),
			SweepInterval: p.duration("CACHE_SWEEP_INTERVAL", DefaultSweepEvery),
			Redis: RedisConfig{
				URL:          p.str("REDIS_URL", ""),
				PoolSize:     p.int("REDIS_POOL_SIZE", 10),
				MinIdleConns: p.int("REDIS_MIN_IDLE_CONNS", 2),
				DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
				ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
				WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			},
		},
		Tax: Tax{
			TaxYear:       p.int("TAX_YEAR", 0),
			RateTablePath: p.str("TAX_RATE_TABLE_PATH", ""),
		},
	}
	if p.err != nil {
		return Config{}, p.err
	}
	if cfg.NOTA.Retries < 0 {
		return Config{}, fmt.Errorf("NOTA_RETRIES must not be negative, got %d", cfg.NOTA.Retries)
	}
	if cfg.NOTA.Timeout <= 0 || cfg.Cache.TTL <= 0 || cfg.Cache.SweepInterval <= 0 {
		return Config{}, errors.New("NOTA_TIMEOUT, CACHE_TTL and CACHE_SWEEP_INTERVAL must be positive")
	}
	return cfg, nil
}

// parser keeps the first parse error so FromEnv can read every variable
// before checking.
type parser struct {
	err error
}

func (p *parser) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds the complete service configuration, loadable from environment
// variables (POS_ prefix), flags, or YAML config files.
type Config struct {
	Addr     string `default:"0.0.0.0:8080" usage:"API server listen address"`
	SeedFile string `default:"" usage:"Path to a catalog seed JSON file (empty = embedded PaperCup menu)" flag:"seed-file"`

	Staff     StaffConfig
	Discount  DiscountConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StaffConfig controls staff key authentication.
type StaffConfig struct {
	// Keys are the raw staff keys accepted by the API. Only their HMAC
	// hashes are held in memory after startup.
	Keys []string `usage:"Staff keys (POS_STAFF_KEYS, comma separated)" flag:"staff-keys"`
	// Pepper is the HMAC pepper for staff key hashing.
	Pepper string `usage:"HMAC pepper for staff key hashing (POS_STAFF_PEPPER)" flag:"staff-pepper"`
}

// DiscountConfig controls the staff-authorized flat discount.
type DiscountConfig struct {
	// Rate is a decimal string so 0.10 stays exactly 0.10.
	Rate string `default:"0.10" usage:"Flat promotional discount rate" flag:"discount-rate"`
}

// SessionConfig controls customer session lifetime.
type SessionConfig struct {
	TTL           time.Duration `default:"30m" usage:"Idle time before a session expires and its reservations are released" flag:"session-ttl"`
	SweepInterval time.Duration `default:"1m"  usage:"How often expired sessions are swept" flag:"session-sweep-interval"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults, then validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "POS",
		Files:     []string{"config.yaml", "/etc/papercup/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if _, err := cfg.DiscountRate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DiscountRate parses the configured rate and checks it is within [0, 1).
func (c *Config) DiscountRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Discount.Rate)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "parse discount rate")
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, errors.Errorf("discount rate %s out of range [0, 1)", rate)
	}
	return rate, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like PORT to the POS_-prefixed
// configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}

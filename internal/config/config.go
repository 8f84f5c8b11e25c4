package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// CapacityMode selects how pickup capacity is enforced on write.
type CapacityMode string

const (
	// CapacityAtomic increments a per-day counter inside the order transaction.
	CapacityAtomic CapacityMode = "atomic"
	// CapacityOptimistic reads consumption, decides, then inserts without a lock.
	CapacityOptimistic CapacityMode = "optimistic"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	SiteName    string
	LogLevel    slog.Level

	CalendarURL      string
	CalendarTimeout  time.Duration
	RedisURL         string
	CalendarCacheTTL time.Duration
	CapacityMode     CapacityMode

	PricingFile string

	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	AdminTokenSecret string
	AdminLogin       string
	AdminPassword    string

	ConfirmationPollInterval time.Duration
	WorkerPoolSize           int
	ShutdownTimeout          time.Duration
	MaxConfirmationsBatch    int
}

const (
	defaultRunAddress         = ":8080"
	defaultSiteName           = "Storefront"
	defaultAdminTokenSecret   = "change-me-in-production"
	defaultAdminLogin         = "admin"
	defaultCalendarTimeout    = 10 * time.Second
	defaultCalendarCacheTTL   = time.Minute
	defaultConfirmationPoll   = 5 * time.Second
	defaultWorkerPoolSize     = 2
	defaultShutdownTimeout    = 10 * time.Second
	defaultMaxConfirmations   = 16
	defaultCheckoutSuccessURL = "http://localhost:8080/success.html"
	defaultCheckoutCancelURL  = "http://localhost:8080/cart.html"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:               getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:              getString(lookup, "DATABASE_URI", ""),
		SiteName:                 getString(lookup, "SITE_NAME", defaultSiteName),
		CalendarURL:              getString(lookup, "CAPACITY_CALENDAR_URL", ""),
		CalendarTimeout:          getDuration(lookup, "CALENDAR_TIMEOUT", defaultCalendarTimeout),
		RedisURL:                 getString(lookup, "REDIS_URL", ""),
		CalendarCacheTTL:         getDuration(lookup, "CALENDAR_CACHE_TTL", defaultCalendarCacheTTL),
		PricingFile:              getString(lookup, "PRICING_FILE", ""),
		StripeSecretKey:          getString(lookup, "STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:      getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
		CheckoutSuccessURL:       getString(lookup, "CHECKOUT_SUCCESS_URL", defaultCheckoutSuccessURL),
		CheckoutCancelURL:        getString(lookup, "CHECKOUT_CANCEL_URL", defaultCheckoutCancelURL),
		AdminTokenSecret:         getString(lookup, "ADMIN_TOKEN_SECRET", defaultAdminTokenSecret),
		AdminLogin:               getString(lookup, "ADMIN_LOGIN", defaultAdminLogin),
		AdminPassword:            getString(lookup, "ADMIN_PASSWORD", ""),
		ConfirmationPollInterval: getDuration(lookup, "CONFIRMATION_POLL_INTERVAL", defaultConfirmationPoll),
		WorkerPoolSize:           getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:          getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		MaxConfirmationsBatch:    getInt(lookup, "POLL_BATCH_SIZE", defaultMaxConfirmations),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.ConfirmationPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		capacityModeStr    = getString(lookup, "CAPACITY_MODE", string(CapacityAtomic))
		logLevelStr        = getString(lookup, "LOG_LEVEL", "info")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.CalendarURL, "c", cfg.CalendarURL, "Published capacity calendar CSV URL")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for calendar caching")
	fs.StringVar(&cfg.PricingFile, "pricing", cfg.PricingFile, "YAML file with discount codes and shipping fees")
	fs.StringVar(&capacityModeStr, "capacity-mode", capacityModeStr, "Capacity enforcement: atomic or optimistic")
	fs.StringVar(&logLevelStr, "log-level", logLevelStr, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.AdminTokenSecret, "admin-secret", cfg.AdminTokenSecret, "Secret for signing admin tokens")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent confirmation workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between confirmation polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MaxConfirmationsBatch, "poll-batch", cfg.MaxConfirmationsBatch, "Maximum confirmations per polling batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ConfirmationPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	switch mode := CapacityMode(strings.ToLower(capacityModeStr)); mode {
	case CapacityAtomic, CapacityOptimistic:
		cfg.CapacityMode = mode
	default:
		return nil, fmt.Errorf("invalid capacity mode %q", capacityModeStr)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	secretFiles := map[string]*string{
		"ADMIN_TOKEN_SECRET_FILE":    &cfg.AdminTokenSecret,
		"STRIPE_WEBHOOK_SECRET_FILE": &cfg.StripeWebhookSecret,
		"STRIPE_SECRET_KEY_FILE":     &cfg.StripeSecretKey,
	}
	for key, target := range secretFiles {
		if path, ok := lookup(key); ok && path != "" {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", strings.ToLower(key), err)
			}
			*target = strings.TrimSpace(string(content))
		}
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxConfirmationsBatch <= 0 {
		cfg.MaxConfirmationsBatch = defaultMaxConfirmations
	}

	if cfg.ConfirmationPollInterval <= 0 {
		cfg.ConfirmationPollInterval = defaultConfirmationPoll
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.CalendarTimeout <= 0 {
		cfg.CalendarTimeout = defaultCalendarTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.CalendarURL == "" {
		return nil, fmt.Errorf("capacity calendar URL must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

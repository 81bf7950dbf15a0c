package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultPort         = 3318
	DefaultSQLiteURL    = "file:suppersafe.db"
	DefaultTurnstileURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	DefaultResendURL    = "https://api.resend.com/emails"
	DefaultExpoPushURL  = "https://exp.host/--/api/v2/push/send"
	DefaultAlertFrom    = "SupperSafe Alerts <alerts@suppersafe.com>"
)

// Rate limiter backends for the error alert relay
const (
	LimiterMemory = "memory"
	LimiterDB     = "db"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Bearer secrets accepted by the alert fan-out endpoint
	CronSecret     string
	ServiceRoleKey string

	TurnstileSecret string
	TurnstileURL    string

	ResendAPIKey string
	ResendURL    string
	AlertEmail   string
	AlertFrom    string

	ExpoPushURL string

	AlertLimiter  string
	AlertInterval time.Duration
}

// Bind registers every setting on fs. Anything left unset after parsing
// is filled from the environment by Resolve.
func (cfg *Config) Bind(fs *flag.FlagSet) {
	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.CronSecret, "cron-secret", "", "Bearer secret for the alert job (prefer env)")
	fs.StringVar(&cfg.ServiceRoleKey, "service-key", "", "Service role key (prefer env)")
	fs.StringVar(&cfg.TurnstileSecret, "turnstile-secret", "", "Turnstile secret key (prefer env)")
	fs.StringVar(&cfg.ResendAPIKey, "resend-key", "", "Resend API key (prefer env)")

	// Outbound services
	fs.StringVar(&cfg.TurnstileURL, "turnstile-url", "", "Turnstile siteverify URL")
	fs.StringVar(&cfg.ResendURL, "resend-url", "", "Resend email API URL")
	fs.StringVar(&cfg.ExpoPushURL, "expo-url", "", "Expo push API URL")
	fs.StringVar(&cfg.AlertEmail, "alert-email", "", "Recipient of error alert emails")
	fs.StringVar(&cfg.AlertFrom, "alert-from", "", "Sender of error alert emails")

	// Jobs
	fs.StringVar(&cfg.AlertLimiter, "alert-limiter", "", "Error alert rate limiter (memory or db)")
	fs.DurationVar(&cfg.AlertInterval, "alert-interval", 0, "Run the inspection alert job on this interval (0 disables)")
}

// Resolve applies environment fallbacks and defaults, then validates.
func (cfg *Config) Resolve() error {
	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return fmt.Errorf("unsupported DATABASE_TYPE %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultSQLiteURL
	}

	envFallback(&cfg.CronSecret, "CRON_SECRET", "")
	envFallback(&cfg.ServiceRoleKey, "SERVICE_ROLE_KEY", "")
	envFallback(&cfg.TurnstileSecret, "TURNSTILE_SECRET_KEY", "")
	envFallback(&cfg.TurnstileURL, "TURNSTILE_URL", DefaultTurnstileURL)
	envFallback(&cfg.ResendAPIKey, "RESEND_API_KEY", "")
	envFallback(&cfg.ResendURL, "RESEND_URL", DefaultResendURL)
	envFallback(&cfg.AlertEmail, "ALERT_EMAIL", "")
	envFallback(&cfg.AlertFrom, "ALERT_FROM", DefaultAlertFrom)
	envFallback(&cfg.ExpoPushURL, "EXPO_PUSH_URL", DefaultExpoPushURL)

	envFallback(&cfg.AlertLimiter, "ALERT_LIMITER", LimiterMemory)
	if cfg.AlertLimiter != LimiterMemory && cfg.AlertLimiter != LimiterDB {
		return fmt.Errorf("unsupported ALERT_LIMITER %q (use memory or db)", cfg.AlertLimiter)
	}

	if cfg.AlertInterval == 0 {
		if s := os.Getenv("ALERT_INTERVAL"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return errors.New("invalid ALERT_INTERVAL env variable")
			}
			cfg.AlertInterval = d
		}
	}
	if cfg.AlertInterval < 0 {
		return errors.New("alert interval must not be negative")
	}

	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("suppersafe", flag.ContinueOnError)
	cfg.Bind(fs)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Resolve(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envFallback(dst *string, key, def string) {
	if *dst != "" {
		return
	}
	*dst = os.Getenv(key)
	if *dst == "" {
		*dst = def
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingProject = errors.New("FIREBASE_PROJECT_ID is required")
	ErrEntryCost      = errors.New("ENTRY_COST must not be negative")
	ErrDrawDelay      = errors.New("DEFAULT_DRAW_DELAY_MS must be between 1000 and 6000")
	ErrNotANumber     = errors.New("not a whole number")
)

const (
	MinDrawDelay = 1000 * time.Millisecond
	MaxDrawDelay = 6000 * time.Millisecond
)

type Config struct {
	ProjectID       string
	CredentialsJSON string
	Port            string
	CORSHosts       []string
	LogLevel        string

	ResendKey string
	MailFrom  string
	LoginURL  string

	RedisAddr    string
	RedisDB      int
	DrawLogQueue string

	EntryCost         int64
	DefaultDrawDelay  time.Duration
	SessionsPerMinute int
	ReportTimezone    string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	// The first malformed number fails the whole load.
	var numberErr error
	number := func(key string, def int) int {
		v, err := atoi(get(key, ""), def)
		if err != nil && numberErr == nil {
			numberErr = fmt.Errorf("%s=%q: %w", key, getenv(key), ErrNotANumber)
		}
		return v
	}

	delayMS := number("DEFAULT_DRAW_DELAY_MS", 4000)
	cfg := &Config{
		ProjectID:         get("FIREBASE_PROJECT_ID", ""),
		CredentialsJSON:   getenv("FIREBASE_CREDENTIALS_JSON"),
		Port:              get("PORT", "8080"),
		LogLevel:          get("LOG_LEVEL", "info"),
		ResendKey:         get("RESEND_KEY", ""),
		MailFrom:          get("MAIL_FROM", "onboarding@resend.dev"),
		LoginURL:          get("LOGIN_URL", "http://localhost:3000/login"),
		RedisAddr:         get("REDIS_ADDR", ""),
		RedisDB:           number("REDIS_DB", 0),
		DrawLogQueue:      get("DRAW_LOG_QUEUE", "bingo_draws"),
		EntryCost:         int64(number("ENTRY_COST", 50)),
		DefaultDrawDelay:  time.Duration(delayMS) * time.Millisecond,
		SessionsPerMinute: number("SESSION_RATE_PER_MIN", 30),
		ReportTimezone:    get("REPORT_TIMEZONE", "Africa/Addis_Ababa"),
	}
	for _, host := range strings.Split(getenv("CORS_HOSTS"), ",") {
		if host = strings.TrimSpace(host); host != "" {
			cfg.CORSHosts = append(cfg.CORSHosts, host)
		}
	}

	if cfg.ProjectID == "" {
		return nil, ErrMissingProject
	}
	if numberErr != nil {
		return nil, numberErr
	}
	if cfg.EntryCost < 0 {
		return nil, ErrEntryCost
	}
	if cfg.DefaultDrawDelay < MinDrawDelay || cfg.DefaultDrawDelay > MaxDrawDelay {
		return nil, ErrDrawDelay
	}
	return cfg, nil
}

// Location resolves ReportTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func atoi(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def, err
	}
	return v, nil
}

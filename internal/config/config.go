// Package config loads application configuration from environment
// variables.  Required values abort startup; optional ones fall back to
// defaults.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the core runtime settings.  Feature-specific settings live
// in their own loaders (cache, rate limit, seat lookup, queue).
type Config struct {
	Env    string // application environment (dev, test, prod)
	Port   string // HTTP port to listen on
	DBUser string
	DBPass string // may be empty
	DBHost string
	DBPort string
	DBName string

	JWTSecret string // verifies editor/admin tokens issued by the college SSO

	LogLevel  string
	LogPretty bool

	// TimeZone renders seat update times, e.g. "America/Los_Angeles".
	TimeZone string

	// ContinuingEdURL is where quarter=CE searches are redirected; the
	// search term is appended as a query parameter.
	ContinuingEdURL string

	// NavQuarters is the number of quarters in the navigation menu and
	// NavTTL how long the menu is cached in process.
	NavQuarters int
	NavTTL      time.Duration
}

// Load reads the core configuration.  Missing required variables are
// fatal.
func Load() Config {
	env := envStr("APP_ENV", "dev")
	return Config{
		Env:             env,
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		LogPretty:       envBool("LOG_PRETTY", env == "dev"),
		TimeZone:        envStr("APP_TZ", "America/Los_Angeles"),
		ContinuingEdURL: envStr("CE_SEARCH_URL", "https://www.campusce.net/bc/search/search.aspx"),
		NavQuarters:     envInt("NAV_QUARTERS", 4),
		NavTTL:          envDur("NAV_TTL", 10*time.Minute),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	// bare integers are seconds
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return d
}

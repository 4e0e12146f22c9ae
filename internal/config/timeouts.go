package config

import (
	"os"
	"strconv"
	"time"

	"github.com/imamik/esprov/internal/platform/elastic"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Request           time.Duration // Timeout for a single cluster call attempt
	RetryMaxAttempts  int           // Total attempts per call, including the first
	RetryInitialDelay time.Duration // Initial delay between retries
	RetryMaxDelay     time.Duration // Upper bound of the backoff delay
	SeedConcurrency   int           // Documents written in parallel
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - ESPROV_REQUEST_TIMEOUT (default: 10s)
//   - ESPROV_RETRY_MAX_ATTEMPTS (default: 3)
//   - ESPROV_RETRY_INITIAL_DELAY (default: 500ms)
//   - ESPROV_RETRY_MAX_DELAY (default: 5s)
//   - ESPROV_SEED_CONCURRENCY (default: 1)
func LoadTimeouts() *Timeouts {
	return loadTimeouts(os.Getenv)
}

func loadTimeouts(lookup func(string) string) *Timeouts {
	return &Timeouts{
		Request:           parseDuration(lookup, "ESPROV_REQUEST_TIMEOUT", 10*time.Second),
		RetryMaxAttempts:  parseInt(lookup, "ESPROV_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: parseDuration(lookup, "ESPROV_RETRY_INITIAL_DELAY", 500*time.Millisecond),
		RetryMaxDelay:     parseDuration(lookup, "ESPROV_RETRY_MAX_DELAY", 5*time.Second),
		SeedConcurrency:   parseInt(lookup, "ESPROV_SEED_CONCURRENCY", 1),
	}
}

// Elastic returns the connection part of the timeouts.
func (t *Timeouts) Elastic() elastic.Timeouts {
	return elastic.Timeouts{
		Request:      t.Request,
		MaxAttempts:  t.RetryMaxAttempts,
		InitialDelay: t.RetryInitialDelay,
		MaxDelay:     t.RetryMaxDelay,
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set, not positive or parsing fails, the default
// value is returned.
func parseDuration(lookup func(string) string, envVar string, defaultVal time.Duration) time.Duration {
	val := lookup(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses a positive integer from an environment variable.
// If the variable is not set, not positive or parsing fails, the default
// value is returned.
func parseInt(lookup func(string) string, envVar string, defaultVal int) int {
	val := lookup(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}

	return i
}

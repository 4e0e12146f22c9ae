package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/imamik/esprov/internal/platform/elastic"
)

// DefaultEnvFile is read when no --env-file flag is given. It may be absent.
const DefaultEnvFile = ".env"

// Environment variables holding the connection settings.
const (
	EnvURL      = "ELASTICSEARCH_URL"
	EnvUsername = "ELASTIC_USERNAME"
	EnvPassword = "ELASTIC_PASSWORD"
	EnvCACert   = "ELASTICSEARCH_CA_CERT"
	EnvInsecure = "ELASTICSEARCH_INSECURE"
)

// Connection defaults match a local single-node development cluster.
const (
	DefaultURL      = "http://localhost:9200"
	DefaultUsername = "elastic"
)

// Config holds the cluster connection settings.
type Config struct {
	// URLs lists the cluster nodes. ELASTICSEARCH_URL may hold several,
	// separated by commas.
	URLs     []string
	Username string
	Password string
	// CACertPath is a PEM file used to verify the cluster certificate.
	CACertPath string
	// Insecure skips TLS verification.
	Insecure bool

	Timeouts *Timeouts
}

// Load reads the connection settings. Values come from the process
// environment first and from envFile second. A missing envFile is an error
// unless it is DefaultEnvFile; an empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	fileEnv := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = vars
		case errors.Is(err, fs.ErrNotExist) && envFile == DefaultEnvFile:
		default:
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileEnv[key]
	}

	cfg := &Config{
		URLs:       splitURLs(valueOr(lookup(EnvURL), DefaultURL)),
		Username:   valueOr(lookup(EnvUsername), DefaultUsername),
		Password:   lookup(EnvPassword),
		CACertPath: lookup(EnvCACert),
		Timeouts:   loadTimeouts(lookup),
	}

	if raw := lookup(EnvInsecure); raw != "" {
		insecure, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid boolean %q", EnvInsecure, raw)
		}
		cfg.Insecure = insecure
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the connection settings.
func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return fmt.Errorf("%s is required", EnvURL)
	}
	for _, u := range c.URLs {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s: %q must start with http:// or https://", EnvURL, u)
		}
	}
	if c.Username == "" {
		return fmt.Errorf("%s is required", EnvUsername)
	}
	if c.Password == "" {
		return fmt.Errorf("%s is required (set it in the environment or in %s)", EnvPassword, DefaultEnvFile)
	}
	return nil
}

// Connection returns the cluster connection, reading the CA certificate if
// one is configured.
func (c *Config) Connection() (elastic.Connection, error) {
	conn := elastic.Connection{
		Addresses: c.URLs,
		Username:  c.Username,
		Password:  c.Password,
		Insecure:  c.Insecure,
	}
	if c.CACertPath != "" {
		// #nosec G304 -- path comes from the operator's own environment
		pem, err := os.ReadFile(c.CACertPath)
		if err != nil {
			return elastic.Connection{}, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		conn.CACert = pem
	}
	return conn, nil
}

// WithURL returns a copy pointing at url, for the --url flag.
func (c *Config) WithURL(url string) *Config {
	out := *c
	out.URLs = splitURLs(url)
	return &out
}

func splitURLs(s string) []string {
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, strings.TrimSuffix(u, "/"))
		}
	}
	return out
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the qaforum client.
//
// Units: RequestTimeout and DebounceWindow are time.Duration values;
// RequestsPerSecond <= 0 disables client-side rate limiting.
type Config struct {
	ServerURL         string
	DataDir           string
	DBFile            string
	RequestTimeout    time.Duration
	DebounceWindow    time.Duration
	RequestsPerSecond float64
	LogLevel          string
	LogFormat         string
	AuthExpiredPolicy string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:5500"
	c.DataDir = "~/.qaforum"
	c.DBFile = "client.db"
	c.RequestTimeout = 10 * time.Second
	c.DebounceWindow = 300 * time.Millisecond
	c.RequestsPerSecond = 5
	c.LogLevel = "warn"
	c.LogFormat = "console"
	c.AuthExpiredPolicy = "retain"
}

// DBPath is the SQLite file inside DataDir. DataDir must already be
// expanded.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.ServerURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("server url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("server url %q: scheme must be http or https", c.ServerURL))
	}
	if c.DBFile == "" {
		errs = append(errs, errors.New("db file must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.DebounceWindow <= 0 {
		errs = append(errs, errors.New("debounce window must be positive"))
	}
	return errors.Join(errs...)
}

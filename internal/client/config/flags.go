package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flags binds the configuration to a command's flag set. Only flags the user
// actually set override the JSON file.
type Flags struct {
	ConfigFile string

	fs     *pflag.FlagSet
	values Config
}

// RegisterFlags defines the configuration flags on fs:
//
//	-c, --config string        path to a JSON config file
//	-s, --server string        forum API base URL
//	    --data-dir string      directory for the local database
//	    --db-file string       database file name inside data-dir
//	    --timeout duration     per-request timeout
//	    --debounce duration    search debounce window
//	    --rps float            client-side request rate limit (0 disables)
//	    --log-level string     debug, info, warn or error
//	    --log-format string    console, text or json
//	    --auth-expired string  retain or logout
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	var def Config
	def.LoadDefaults()

	f := &Flags{fs: fs}
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "path to a JSON config file")
	fs.StringVarP(&f.values.ServerURL, "server", "s", def.ServerURL, "forum API base URL")
	fs.StringVar(&f.values.DataDir, "data-dir", def.DataDir, "directory for the local database")
	fs.StringVar(&f.values.DBFile, "db-file", def.DBFile, "database file name inside data-dir")
	fs.DurationVar(&f.values.RequestTimeout, "timeout", def.RequestTimeout, "per-request timeout")
	fs.DurationVar(&f.values.DebounceWindow, "debounce", def.DebounceWindow, "search debounce window")
	fs.Float64Var(&f.values.RequestsPerSecond, "rps", def.RequestsPerSecond, "client-side request rate limit, 0 disables")
	fs.StringVar(&f.values.LogLevel, "log-level", def.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&f.values.LogFormat, "log-format", def.LogFormat, "log format: console, text or json")
	fs.StringVar(&f.values.AuthExpiredPolicy, "auth-expired", def.AuthExpiredPolicy, "on a rejected credential: retain or logout")
	return f
}

// Load builds the Config: defaults, then the JSON file named by --config,
// then every flag that was set explicitly. Call it after the flags were
// parsed.
func (f *Flags) Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if f.ConfigFile != "" {
		if err := parseJson(cfg, f.ConfigFile); err != nil {
			return nil, err
		}
	}
	f.overlay(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (f *Flags) overlay(cfg *Config) {
	set := func(name string) bool { return f.fs.Changed(name) }

	if set("server") {
		cfg.ServerURL = f.values.ServerURL
	}
	if set("data-dir") {
		cfg.DataDir = f.values.DataDir
	}
	if set("db-file") {
		cfg.DBFile = f.values.DBFile
	}
	if set("timeout") {
		cfg.RequestTimeout = f.values.RequestTimeout
	}
	if set("debounce") {
		cfg.DebounceWindow = f.values.DebounceWindow
	}
	if set("rps") {
		cfg.RequestsPerSecond = f.values.RequestsPerSecond
	}
	if set("log-level") {
		cfg.LogLevel = f.values.LogLevel
	}
	if set("log-format") {
		cfg.LogFormat = f.values.LogFormat
	}
	if set("auth-expired") {
		cfg.AuthExpiredPolicy = f.values.AuthExpiredPolicy
	}
}

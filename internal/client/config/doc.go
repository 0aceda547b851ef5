// Package config loads runtime configuration for the qaforum client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or --config.
//  3. Command-line flags set explicitly by the user.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "300ms" or
// integer nanoseconds:
//
//	{
//	  "server_url": "https://forum.example.com",
//	  "data_dir": "~/.qaforum",
//	  "db_file": "client.db",
//	  "request_timeout": "10s",
//	  "debounce_window": "300ms",
//	  "requests_per_second": 5,
//	  "log_level": "warn",
//	  "log_format": "console",
//	  "auth_expired_policy": "retain"
//	}
//
// The package does not read environment variables.
package config

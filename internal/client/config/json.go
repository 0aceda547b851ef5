package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/qaforum/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "300ms" or as integer nanoseconds. Absent fields keep the
// value they had before the file was read.
type JsonConfig struct {
	ServerURL         string          `json:"server_url"`
	DataDir           string          `json:"data_dir"`
	DBFile            string          `json:"db_file"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	DebounceWindow    *timex.Duration `json:"debounce_window"`
	RequestsPerSecond *float64        `json:"requests_per_second"`
	LogLevel          string          `json:"log_level"`
	LogFormat         string          `json:"log_format"`
	AuthExpiredPolicy string          `json:"auth_expired_policy"`
}

// parseJson overlays cfg with the values present in the JSON file at path.
func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DBFile, jc.DBFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.AuthExpiredPolicy, jc.AuthExpiredPolicy)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DebounceWindow != nil {
		cfg.DebounceWindow = jc.DebounceWindow.Duration
	}
	if jc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *jc.RequestsPerSecond
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

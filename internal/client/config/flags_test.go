package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f.Load()
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_url":      "https://json.example.com",
		"debounce_window": "500ms",
		"log_level":       "info",
	})

	cfg, err := load(t, "-c", path, "--debounce", "100ms", "--auth-expired", "logout")
	require.NoError(t, err)

	assert.Equal(t, "https://json.example.com", cfg.ServerURL, "json beats defaults")
	assert.Equal(t, 100*time.Millisecond, cfg.DebounceWindow, "flags beat json")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "logout", cfg.AuthExpiredPolicy)
}

func TestLoad_UnsetFlagDoesNotOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"server_url": "https://json.example.com"})

	cfg, err := load(t, "--config="+path, "--rps", "0")
	require.NoError(t, err)

	assert.Equal(t, "https://json.example.com", cfg.ServerURL)
	assert.Zero(t, cfg.RequestsPerSecond)
}

func TestLoad_InvalidResult(t *testing.T) {
	_, err := load(t, "-s", "localhost:5500")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRegisterFlags_BadDuration(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	assert.Error(t, fs.Parse([]string{"--timeout", "abc"}))
}

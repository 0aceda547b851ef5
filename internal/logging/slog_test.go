package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, level slog.Level) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "session restored", "user", "abe")
	log.Info(ctx, "signed in", "user", "abe")
	log.Warn(ctx, "refetch failed", "kind", "questions")
	log.Error(ctx, "close failed", "error", "disk")

	recs := records(t, buf)
	require.Len(t, recs, 4)

	want := []struct{ level, msg, key, val string }{
		{"DEBUG", "session restored", "user", "abe"},
		{"INFO", "signed in", "user", "abe"},
		{"WARN", "refetch failed", "kind", "questions"},
		{"ERROR", "close failed", "error", "disk"},
	}
	for i, w := range want {
		assert.Equal(t, w.level, recs[i]["level"])
		assert.Equal(t, w.msg, recs[i]["msg"])
		assert.Equal(t, w.val, recs[i][w.key])
	}
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	log, buf := newTestLogger(t, slog.LevelWarn)
	ctx := context.Background()

	log.Debug(ctx, "hidden")
	log.Info(ctx, "hidden")
	log.Warn(ctx, "shown")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "shown", recs[0]["msg"])
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t, slog.LevelInfo)

	log.With("component", "api").Info(context.Background(), "request", "status", 200)

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "api", recs[0]["component"])
	assert.EqualValues(t, 200, recs[0]["status"])
}

func TestSlogLogger_NilLoggerUsesDefault(t *testing.T) {
	assert.NotPanics(t, func() {
		NewSlogLogger(nil).Debug(context.TODO(), "ignored")
	})
}

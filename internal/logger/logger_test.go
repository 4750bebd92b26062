package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_Configs(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{name: "default config", config: nil},
		{name: "json", config: &Config{Level: "debug", Format: "json"}},
		{name: "console", config: &Config{Level: "info", Format: "console"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, New(tt.config))
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Format: "json", Output: buf})

	l.Info("table inspected")

	entry := decode(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "table inspected", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogger_ChildFields(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Format: "json", Output: buf})

	l.With().Str("backend", "postgres").Int("tables", 3).Logger().Info("schema listed")

	entry := decode(t, buf)
	assert.Equal(t, "postgres", entry["backend"])
	assert.Equal(t, float64(3), entry["tables"])
}

func TestLogger_ErrorWith(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "error", Format: "json", Output: buf})

	l.ErrorWith("inspect failed", errors.New("schema 'kappa' does not exist"), map[string]any{"schema": "kappa"})

	entry := decode(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "schema 'kappa' does not exist", entry["error"])
	assert.Equal(t, "kappa", entry["schema"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		logFunc func(*Logger)
		logged  bool
	}{
		{"debug logs debug", "debug", func(l *Logger) { l.DebugWith("q", map[string]any{"query": "columns"}) }, true},
		{"info skips debug", "info", func(l *Logger) { l.Debug("q") }, false},
		{"error skips info", "error", func(l *Logger) { l.Info("x") }, false},
		{"warn logs error", "warn", func(l *Logger) { l.Error("x") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.logFunc(New(&Config{Level: tt.level, Format: "json", Output: buf}))
			if tt.logged {
				assert.NotEmpty(t, buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Format: "json", Output: buf})

	FromContext(l.WithContext(context.Background())).Info("from context")
	assert.Equal(t, "from context", decode(t, buf)["message"])

	assert.NotNil(t, FromContext(context.Background()))
}

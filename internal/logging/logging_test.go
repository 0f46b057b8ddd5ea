package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"Warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	l.Info().Msg("hidden")
	l.Warn().Str("component", "tracker").Msg("camera lost")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "tracker", entry["component"])
	assert.Equal(t, "camera lost", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.LogConfig{Level: "debug"}, &buf)

	l.Debug().Str("gesture", "love").Msg("committed")

	out := buf.String()
	assert.Contains(t, out, "committed")
	assert.Contains(t, out, "gesture=love")
	assert.NotContains(t, out, "\x1b[", "non-terminal output is not colored")
}

func TestSampled(t *testing.T) {
	var buf bytes.Buffer
	l := Sampled(NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf))

	for range 50 {
		l.Warn().Msg("detect failed")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Less(t, len(lines), 50)
	assert.GreaterOrEqual(t, len(lines), 5)
}

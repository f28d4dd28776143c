package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", "json", &buf)

	l.Info().Msg("hidden")
	l.Warn().Str("room", "ICU-01").Msg("occupancy underflow")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "ICU-01", entry["room"])
	assert.Equal(t, "occupancy underflow", entry["message"])
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New("chatty", "json", &buf)

	l.Debug().Msg("hidden")
	l.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

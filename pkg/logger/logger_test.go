package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.DebugLevel)

	l.Warn("fetch failed",
		String("symbol", "BTCUSDT_ETHUSDT"),
		Int("points", 30),
		Float64("factor", 1.5),
		Duration("duration_ms", 250*time.Millisecond),
		Bool("superseded", true),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "warn", got["level"])
	assert.Equal(t, "fetch failed", got["message"])
	assert.Equal(t, "BTCUSDT_ETHUSDT", got["symbol"])
	assert.EqualValues(t, 30, got["points"])
	assert.EqualValues(t, 1.5, got["factor"])
	assert.EqualValues(t, 250, got["duration_ms"])
	assert.Equal(t, true, got["superseded"])
	assert.Equal(t, "boom", got["error"])
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.InfoLevel).With(String("component", "chartdata"))

	l.Info("ok")
	l.Debug("dropped below level")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &got))
	assert.Equal(t, "chartdata", got["component"])
}

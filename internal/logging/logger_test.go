package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestSetupWriterJSONWithComponent(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buf bytes.Buffer
	logger := SetupWriter(&buf, "info", "json")
	WithComponent(logger, "outliers").Info("outlier remediated", "row", 4)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "outliers", record["component"])
	assert.Equal(t, "outlier remediated", record["msg"])
	assert.Equal(t, float64(4), record["row"])
}

func TestWithComponentNilLogger(t *testing.T) {
	assert.NotNil(t, WithComponent(nil, "x"))
}

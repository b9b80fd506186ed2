package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLoggersSplitsOutput(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer

	loggers, err := NewLoggers("info", &infoBuf, &errBuf)
	require.NoError(t, err)

	loggers.InfoLogger.Debug("hidden")
	loggers.InfoLogger.Info("server started", "port", 8080)
	loggers.ErrorLogger.Error("boom")

	var record map[string]any
	require.NoError(t, json.Unmarshal(infoBuf.Bytes(), &record))
	assert.Equal(t, "server started", record["msg"])
	assert.EqualValues(t, 8080, record["port"])

	assert.Contains(t, errBuf.String(), `"msg":"boom"`)
	assert.NotContains(t, infoBuf.String(), "hidden")
}

func TestSetupLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := SetupLogger("loud")
	assert.Error(t, err)
}

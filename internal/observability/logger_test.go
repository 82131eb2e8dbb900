package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforesight/foresight/internal/observability"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, observability.LogLevelDebug, observability.ParseLevel("debug"))
	assert.Equal(t, observability.LogLevelError, observability.ParseLevel("ERROR"))
	assert.Equal(t, observability.LogLevelInfo, observability.ParseLevel("info"))
	assert.Equal(t, observability.LogLevelInfo, observability.ParseLevel("verbose"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, observability.LogFormatJSON, observability.ParseFormat("json"))
	assert.Equal(t, observability.LogFormatHuman, observability.ParseFormat("human"))
	assert.Equal(t, observability.LogFormatHuman, observability.ParseFormat(""))
}

func TestDefaultLogger_Human(t *testing.T) {
	buf := captureLog(t)

	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatHuman)
	logger.LogInfo(context.Background(), "scan complete", map[string]interface{}{
		"runID":    "a1b2c3",
		"findings": 6,
	})

	output := buf.String()
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "scan complete")
	assert.Contains(t, output, "findings=6")
	assert.Contains(t, output, "runID=a1b2c3")
}

func TestDefaultLogger_HumanEmptyFields(t *testing.T) {
	buf := captureLog(t)

	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatHuman)
	logger.LogWarning(context.Background(), "store disabled", nil)

	output := buf.String()
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "store disabled")
	assert.NotContains(t, output, "(")
}

func TestDefaultLogger_JSON(t *testing.T) {
	buf := captureLog(t)

	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatJSON)
	logger.LogWarning(context.Background(), "failed to record run", map[string]interface{}{
		"runID": "a1b2c3",
		"error": "database is locked",
	})

	output := buf.String()
	jsonStart := strings.Index(output, "{")
	require.NotEqual(t, -1, jsonStart)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output[jsonStart:]), &entry))

	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "failed to record run", entry["message"])
	assert.Equal(t, "a1b2c3", entry["runID"])
	assert.Equal(t, "database is locked", entry["error"])
	assert.Contains(t, entry, "timestamp")
}

func TestDefaultLogger_RespectsLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.LogLevel
		shouldLog bool
	}{
		{"debug level logs info", observability.LogLevelDebug, true},
		{"info level logs info", observability.LogLevelInfo, true},
		{"error level skips info", observability.LogLevelError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			logger := observability.NewDefaultLogger(tt.level, observability.LogFormatHuman)
			logger.LogInfo(context.Background(), "stage finished", nil)

			if tt.shouldLog {
				assert.Contains(t, buf.String(), "stage finished")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestDefaultLogger_DebugSuppressedAtInfo(t *testing.T) {
	buf := captureLog(t)

	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatHuman)
	logger.LogDebug(context.Background(), "rule matched", map[string]interface{}{"rule": "S1-SQL-CONCAT"})

	assert.Empty(t, buf.String())
}

func TestNopLogger(t *testing.T) {
	buf := captureLog(t)

	logger := observability.NopLogger{}
	logger.LogInfo(context.Background(), "invisible", nil)
	logger.LogError(context.Background(), "also invisible", nil)

	assert.Empty(t, buf.String())
}

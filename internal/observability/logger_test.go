// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/mkaresz/locascope/internal/config"
)

// syncBuffer adapts bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

func TestInitializeConsoleLogger(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "locascope-test",
		Colors:      config.ColorConfig{Info: "green", Error: "red"},
	}, &buf)

	logger := GetLogger()
	logger.Info("hello from the console core")
	logger.Debug("debug is enabled")

	out := buf.String()
	assert.Contains(t, out, "hello from the console core")
	assert.Contains(t, out, "debug is enabled")
	assert.Contains(t, out, "locascope-test.")
	assert.Contains(t, out, "\x1b[32m", "info level must carry the configured color")
}

func TestInitializeJSONLogger(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	Initialize(config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "locascope-test",
	}, &buf)

	GetLogger().Info("structured entry")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "structured entry", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeRespectsLevel(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	Initialize(config.LoggerConfig{
		Level:  "warn",
		Format: "json",
	}, &buf)

	logger := GetLogger()
	logger.Info("should be filtered")
	logger.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
}

func TestInitializeFileCore(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logFile := filepath.Join(t.TempDir(), "locascope.log")
	var buf syncBuffer
	Initialize(config.LoggerConfig{
		Level:   "info",
		Format:  "console",
		LogFile: logFile,
	}, &buf)

	GetLogger().Info("written to both cores")
	Sync()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to both cores")
	// The file core is always JSON regardless of the console format.
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
}

func TestInitializeOnlyRunsOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second syncBuffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, &first)
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, &second)

	GetLogger().Info("only the first writer wins")
	assert.Contains(t, first.String(), "only the first writer wins")
	assert.Empty(t, second.String())
}

func TestGetLoggerFallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	// The fallback must never panic and must be usable immediately.
	logger.Info("fallback logger works")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	Initialize(config.LoggerConfig{Level: "not-a-level", Format: "json"}, &buf)

	logger := GetLogger()
	logger.Debug("filtered at info")
	logger.Info("visible at info")

	out := buf.String()
	assert.NotContains(t, out, "filtered at info")
	assert.Contains(t, out, "visible at info")
}

func TestColorizedLevelEncoderUnknownColor(t *testing.T) {
	encoder := newColorizedLevelEncoder(config.ColorConfig{Info: "no-such-color"})

	enc := &capturingArrayEncoder{}
	encoder(zapcore.InfoLevel, enc)
	require.Len(t, enc.strings, 1)
	assert.Equal(t, "INFO", enc.strings[0], "unknown color names must not wrap the level in escape codes")
}

// capturingArrayEncoder records appended strings; the rest of the interface
// is a no-op.
type capturingArrayEncoder struct {
	zapcore.PrimitiveArrayEncoder
	strings []string
}

func (e *capturingArrayEncoder) AppendString(s string) { e.strings = append(e.strings, s) }

package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/genesisos/genesis/internal/config"
)

func TestInitializeWithConsoleFormat(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &zaptest.Buffer{}
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "genesis-test",
	}, buf)

	logger := GetLogger()
	require.NotNil(t, logger)
	logger.Info("boot sequence started")
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.Contains(t, out, "boot sequence started")
	assert.Contains(t, out, "genesis-test")
	assert.Contains(t, out, "INFO")
}

func TestInitializeJSONFormat(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &zaptest.Buffer{}
	Initialize(config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "genesis-test",
	}, buf)

	GetLogger().Info("structured line")
	lines := buf.Lines()
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], `"msg":"structured line"`)
}

func TestLevelFiltering(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &zaptest.Buffer{}
	Initialize(config.LoggerConfig{
		Level:  "warn",
		Format: "json",
	}, buf)

	logger := GetLogger()
	logger.Info("should be dropped")
	logger.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be dropped")
	assert.Contains(t, out, "should appear")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &zaptest.Buffer{}
	Initialize(config.LoggerConfig{
		Level:  "not-a-level",
		Format: "json",
	}, buf)

	logger := GetLogger()
	logger.Debug("debug hidden at info level")
	logger.Info("info visible")

	out := buf.String()
	assert.NotContains(t, out, "debug hidden")
	assert.Contains(t, out, "info visible")
}

func TestInitializeRunsOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &zaptest.Buffer{}
	second := &zaptest.Buffer{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, first)
	Initialize(config.LoggerConfig{Level: "debug", Format: "console"}, second)

	GetLogger().Info("lands in the first writer")
	assert.Contains(t, first.String(), "lands in the first writer")
	assert.Empty(t, second.String())
}

func TestGetLoggerBeforeInitializeFallsBack(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	assert.NotNil(t, logger)
}

var _ zapcore.WriteSyncer = (*zaptest.Buffer)(nil)

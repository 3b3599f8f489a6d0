// File: internal/observability/logger_test.go
package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvirtue/gemini-computer-use/internal/config"
)

func TestGetLoggerBeforeInitializeIsSafe(t *testing.T) {
	ResetForTest()

	logger := GetLogger()
	require.NotNil(t, logger)
	// Must not panic.
	logger.Info("pre-init message")
}

func TestInitializeLoggerIsIdempotent(t *testing.T) {
	ResetForTest()

	InitializeLogger(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "browserd"})
	first := GetLogger()

	InitializeLogger(config.LoggerConfig{Level: "error", Format: "json", ServiceName: "other"})
	second := GetLogger()

	assert.Same(t, first, second, "second initialization must not replace the logger")
}

func TestInitializeLoggerBadLevelFallsBack(t *testing.T) {
	ResetForTest()

	InitializeLogger(config.LoggerConfig{Level: "not-a-level", Format: "console", ServiceName: "browserd"})
	require.NotNil(t, GetLogger())
}

package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grasslab/mowsim/internal/config"
)

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(config.LoggerConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.True(t, log.Core().Enabled(-1), "debug level enables debug entries")

	log, err = NewLogger(config.LoggerConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(0), "warn level suppresses info entries")
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger(config.LoggerConfig{Level: "loud", Format: "console"})
	assert.Error(t, err)
}

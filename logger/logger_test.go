package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		log, err := New(level, "json")
		require.NoError(t, err)
		require.NotNil(t, log)
	}

	log, err := New("info", "console")
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestWithService(t *testing.T) {
	log, err := New("info", "json")
	require.NoError(t, err)

	assert.NotNil(t, WithService(log, "admission-service"))
}

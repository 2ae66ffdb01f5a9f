package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("console output", func(t *testing.T) {
		l, err := New(Config{Level: "info", Console: true})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
		assert.NoError(t, l.Close())
	})

	t.Run("file output", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "logs", "roadmap.log")

		l, err := New(Config{Level: "debug", File: logFile})
		require.NoError(t, err)

		l.Info().Str("topic", "Basics").Msg("rendered")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), `"topic":"Basics"`))
		assert.True(t, strings.Contains(string(data), `"service":"roadmap"`))
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		l, err := New(Config{Level: "loud"})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})
}

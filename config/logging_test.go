package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogConfigFrom(t *testing.T) {
	c := LogConfigFrom(map[string]string{"LOG_LEVEL": "debug", "LOG_FILE": "/tmp/site.log", "LOG_CONSOLE": "false"})
	assert.Equal(t, "debug", c.Level)
	assert.Equal(t, "/tmp/site.log", c.FilePath)
	assert.False(t, c.Console)
	assert.Equal(t, 100, c.MaxSizeMB)
}

func TestSetupLoggerWritesFile(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	path := filepath.Join(t.TempDir(), "logs", "site.log")
	closer := SetupLogger(LogConfig{Level: "WARN", FilePath: path, MaxSizeMB: 1})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("dropped")
	log.Warn().Str("component", "test").Msg("kept")
	require.NoError(t, closer.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "kept")
	assert.NotContains(t, string(contents), "dropped")
}

func TestSetupLoggerBadLevel(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	closer := SetupLogger(LogConfig{Level: "loud"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.NoError(t, closer.Close())
}

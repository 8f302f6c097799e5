package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig configures the global zerolog logger
type LogConfig struct {
	Level string
	// FilePath enables a rotated log file. Empty means no file.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Console writes human readable output to stderr.
	Console bool
}

// LogConfigFrom reads LOG_LEVEL, LOG_FILE and LOG_CONSOLE.
func LogConfigFrom(cfg map[string]string) LogConfig {
	return LogConfig{
		Level:      GetString(cfg, "LOG_LEVEL", "info"),
		FilePath:   GetString(cfg, "LOG_FILE", ""),
		MaxSizeMB:  GetInt(cfg, "LOG_MAX_SIZE_MB", 100),
		MaxBackups: GetInt(cfg, "LOG_MAX_BACKUPS", 3),
		MaxAgeDays: GetInt(cfg, "LOG_MAX_AGE_DAYS", 28),
		Console:    GetBool(cfg, "LOG_CONSOLE", true),
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogger installs the global logger. The returned closer flushes the
// log file, if any.
func SetupLogger(c LogConfig) io.Closer {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if c.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(c.FilePath), 0o755); err == nil {
			file := &lumberjack.Logger{
				Filename:   c.FilePath,
				MaxSize:    c.MaxSizeMB,
				MaxBackups: c.MaxBackups,
				MaxAge:     c.MaxAgeDays,
				Compress:   true,
			}
			writers = append(writers, file)
			closer = file
		}
	}
	if c.Console || len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	return closer
}

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MEKXH/achievebot/internal/config"
)

// logSink owns the log file across repeated configureLogger calls.
type logSink struct {
	mu   sync.Mutex
	file *os.File
}

var sink logSink

// open returns the destination for log records. An empty path logs to
// stderr, or nowhere when quiet is set so console replies stay readable.
func (s *logSink) open(path string, quiet bool) (io.Writer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil && s.file.Name() != path {
		_ = s.file.Close()
		s.file = nil
	}
	switch {
	case path == "" && quiet:
		return io.Discard, nil
	case path == "":
		return os.Stderr, nil
	case s.file != nil:
		return s.file, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	s.file = f
	return f, nil
}

// configureLogger installs the default slog logger for the bot.
func configureLogger(cfg *config.Config, overrideLevel string, quiet bool) error {
	level, err := parseLogLevel(cfg.Log.Level, overrideLevel)
	if err != nil {
		return err
	}
	w, err := sink.open(resolveLogPath(cfg.Log.File), quiet)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(newLogHandler(w, cfg.Log.Format, level)).With("bot", cfg.Bot.Name))
	return nil
}

func newLogHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), config.LogFormatJSON) {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// resolveLogPath places relative log files under the config directory.
func resolveLogPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(config.ConfigDir(), path)
}

func parseLogLevel(configLevel, override string) (slog.Level, error) {
	name := strings.TrimSpace(configLevel)
	if o := strings.TrimSpace(override); o != "" {
		name = o
	}
	var level slog.Level
	switch strings.ToLower(name) {
	case "", "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return 0, fmt.Errorf("invalid log level: %s", name)
	}
	return level, nil
}

package commands

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		config, override string
		want             slog.Level
	}{
		{config: "", want: slog.LevelInfo},
		{config: "debug", want: slog.LevelDebug},
		{config: "info", override: "error", want: slog.LevelError},
		{config: "WARNING", want: slog.LevelWarn},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.config, tt.override)
		if err != nil || got != tt.want {
			t.Fatalf("parseLogLevel(%q, %q) = %v, %v; want %v", tt.config, tt.override, got, err, tt.want)
		}
	}
	if _, err := parseLogLevel("loud", ""); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestResolveLogPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := resolveLogPath(""); got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}
	abs := filepath.Join(home, "bot.log")
	if got := resolveLogPath(abs); got != abs {
		t.Fatalf("expected absolute path kept, got %q", got)
	}
	if got := resolveLogPath("logs/bot.log"); got != filepath.Join(home, ".achievebot", "logs", "bot.log") {
		t.Fatalf("unexpected relative path resolution %q", got)
	}
}

func TestNewLogHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newLogHandler(&buf, "json", slog.LevelInfo)).Info("granted", "user", "bob")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"user":"bob"`) {
		t.Fatalf("expected json record, got %q", buf.String())
	}

	buf.Reset()
	slog.New(newLogHandler(&buf, "", slog.LevelInfo)).Info("granted", "user", "bob")
	if !strings.Contains(buf.String(), "user=bob") {
		t.Fatalf("expected text record, got %q", buf.String())
	}

	buf.Reset()
	slog.New(newLogHandler(&buf, "text", slog.LevelWarn)).Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info record filtered at warn, got %q", buf.String())
	}
}

func TestLogSink_ReusesFile(t *testing.T) {
	var s logSink
	path := filepath.Join(t.TempDir(), "logs", "bot.log")

	w1, err := s.open(path, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	w2, err := s.open(path, true)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if w1 != w2 {
		t.Fatal("expected the same file for the same path")
	}
	if w, _ := s.open("", true); w != io.Discard {
		t.Fatal("expected discard when quiet without a file")
	}
	if s.file != nil {
		t.Fatal("expected file closed after switching away")
	}
}

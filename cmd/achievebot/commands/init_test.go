package commands

import (
	"os"
	"strings"
	"testing"

	"github.com/MEKXH/achievebot/internal/config"
)

func TestInitCommand_CreatesConfigAndDataDir(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("USERPROFILE", tmpDir)

	out := captureOutput(t, func() {
		if err := runInit(nil, nil); err != nil {
			t.Fatalf("runInit error: %v", err)
		}
	})

	configPath := config.ConfigPath()
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("expected config file at %s: %v", configPath, err)
	}

	dataDir, _ := config.DefaultConfig().DataDirPath()
	if _, err := os.Stat(dataDir); err != nil {
		t.Fatalf("expected data dir at %s: %v", dataDir, err)
	}
	if !strings.Contains(out, "Achievebot initialized!") {
		t.Fatalf("unexpected init output: %s", out)
	}
}

func TestInitCommand_KeepsExistingConfig(t *testing.T) {
	setupHome(t, config.StorageSQLite)

	out := captureOutput(t, func() {
		if err := runInit(nil, nil); err != nil {
			t.Fatalf("runInit error: %v", err)
		}
	})
	if !strings.Contains(out, "Config already exists") {
		t.Fatalf("unexpected init output: %s", out)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if cfg.Bot.Storage != config.StorageSQLite {
		t.Fatalf("expected existing config kept, got storage %q", cfg.Bot.Storage)
	}
}

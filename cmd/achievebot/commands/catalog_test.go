package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/MEKXH/achievebot/internal/achievement"
	"github.com/MEKXH/achievebot/internal/config"
)

func TestRenderCatalog(t *testing.T) {
	var out bytes.Buffer
	renderCatalog(&out, "Achievements", []achievement.Achievement{
		{Name: "Speedrun", Description: "Finish under 5 min", Criteria: "Beat the clock"},
		{Name: "Pacifist", Description: "Win without fighting"},
	})

	got := out.String()
	for _, want := range []string{"Achievements (2)", "NAME", "Speedrun", "Beat the clock", "Pacifist"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestRenderCatalog_Empty(t *testing.T) {
	var out bytes.Buffer
	renderCatalog(&out, "Achievements", nil)
	if strings.TrimSpace(out.String()) != "No achievements." {
		t.Fatalf("unexpected empty output %q", out.String())
	}
}

func TestRunCatalog_FiltersByUser(t *testing.T) {
	cfg := setupHome(t, config.StorageFile)
	loop, backend, err := openEngine(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("openEngine: %v", err)
	}
	ctx := context.Background()
	loop.ProcessDirect(ctx, "test", "alice", "add Speedrun : fast")
	loop.ProcessDirect(ctx, "test", "alice", "add Pacifist : calm")
	loop.ProcessDirect(ctx, "test", "alice", "grant bob pacifist")
	_ = backend.Close()

	cmd := NewCatalogCmd()
	if err := cmd.Flags().Set("user", "bob"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	out := captureOutput(t, func() {
		if err := runCatalog(cmd, nil); err != nil {
			t.Fatalf("runCatalog error: %v", err)
		}
	})
	if !strings.Contains(out, "Earned by bob (1)") || !strings.Contains(out, "Pacifist") || strings.Contains(out, "Speedrun") {
		t.Fatalf("unexpected catalog output:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncate("a much longer name", 10); got != "a much ..." {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncate("ééééééé", 5); got != "éé..." {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
}

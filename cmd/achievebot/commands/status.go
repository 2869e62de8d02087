package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/MEKXH/achievebot/internal/audit"
	"github.com/MEKXH/achievebot/internal/config"
	"github.com/MEKXH/achievebot/internal/metrics"
	"github.com/spf13/cobra"
)

const recentAuditEvents = 5

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show achievebot configuration and runtime status",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dataDir, err := cfg.DataDirPath()
	if err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}

	fmt.Println("=== Achievebot Status ===")
	fmt.Println()

	fmt.Printf("Config: %s\n", config.ConfigPath())
	if _, err := os.Stat(config.ConfigPath()); err == nil {
		fmt.Println("  Status: OK")
	} else {
		fmt.Println("  Status: Not found (run 'achievebot init')")
	}

	fmt.Printf("\nBot: %s\n", cfg.Bot.Name)
	fmt.Printf("  Storage: %s\n", cfg.Bot.Storage)
	fmt.Printf("  Data:    %s\n", dataDir)
	fmt.Printf("  Queue:   %d\n", cfg.Bot.QueueSize)

	catalog, ledger, backend, err := openStores(context.Background(), cfg)
	if err != nil {
		fmt.Printf("  Stores:  unavailable (%v)\n", err)
	} else {
		fmt.Printf("  Stores:  %d achievements, %d grants\n", catalog.Len(), ledger.Len())
		_ = backend.Close()
	}

	fmt.Println("\nChannels:")
	telegramLine := "disabled"
	if cfg.Channels.Telegram.Enabled {
		telegramLine = "enabled"
		if len(cfg.Channels.Telegram.AllowFrom) > 0 {
			telegramLine += fmt.Sprintf(" (allow_from=%d)", len(cfg.Channels.Telegram.AllowFrom))
		}
	}
	fmt.Printf("  Telegram: %s\n", telegramLine)

	fmt.Println("\nGateway:")
	if cfg.Gateway.Enabled {
		fmt.Printf("  Address: %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
		if cfg.Gateway.Token != "" {
			fmt.Println("  Auth:    token configured")
		} else {
			fmt.Println("  Auth:    no token (open)")
		}
	} else {
		fmt.Println("  Status:  disabled")
	}

	fmt.Println("\nRuntime:")
	snap, err := metrics.ReadRuntimeSnapshot(dataDir)
	switch {
	case err != nil:
		fmt.Printf("  Metrics: unreadable (%v)\n", err)
	case !snap.HasData():
		fmt.Println("  Metrics: no data yet")
	default:
		fmt.Printf("  Updated:  %s\n", snap.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("  Commands: %d total, %d failed (%.1f%%), avg %.1fms, p95~%dms\n",
			snap.Command.Total,
			snap.Command.Failures,
			snap.Command.FailureRatio()*100,
			snap.Command.AvgLatencyMs(),
			snap.Command.P95ProxyLatencyMs,
		)
		fmt.Printf("  Sends:    %d attempts, %d failed\n", snap.Channel.SendAttempts, snap.Channel.SendFailures)
	}

	events, err := audit.Tail(dataDir, recentAuditEvents)
	if err == nil && len(events) > 0 {
		fmt.Println("\nRecent activity:")
		for _, ev := range events {
			fmt.Printf("  %s %-8s %s %s (%s)\n",
				ev.Time.Local().Format("2006-01-02 15:04:05"),
				ev.Verb,
				ev.Sender,
				ev.Args,
				ev.Result,
			)
		}
	}

	return nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MEKXH/achievebot/internal/audit"
	"github.com/MEKXH/achievebot/internal/bus"
	"github.com/MEKXH/achievebot/internal/channel"
	"github.com/MEKXH/achievebot/internal/channel/telegram"
	"github.com/MEKXH/achievebot/internal/config"
	"github.com/MEKXH/achievebot/internal/gateway"
	"github.com/MEKXH/achievebot/internal/metrics"
	"github.com/spf13/cobra"
)

func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the achievement bot",
		RunE:  runServer,
	}

	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dataDir, err := cfg.DataDirPath()
	if err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}

	msgBus := bus.NewMessageBus(cfg.Bot.QueueSize)

	loop, backend, err := openEngine(ctx, cfg, msgBus)
	if err != nil {
		return err
	}
	defer backend.Close()

	recorder := metrics.NewRuntimeMetrics(dataDir)
	loop.SetRuntimeMetrics(recorder)
	if cfg.Log.Audit {
		loop.SetAuditWriter(audit.NewWriter(dataDir))
	}

	errCh := make(chan error, 2)
	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("command engine failed: %w", err)
		}
	}()

	chanMgr := channel.NewManager(msgBus)
	chanMgr.SetRuntimeMetrics(recorder)

	if cfg.Channels.Telegram.Enabled {
		tg := telegram.New(&cfg.Channels.Telegram, cfg.Bot.Name, msgBus)
		tg.SetQuitHandler(func() {
			slog.Info("quit requested over telegram")
			cancel()
		})
		chanMgr.Register(tg)
	}

	chanMgr.StartAll(ctx)
	go chanMgr.RouteOutbound(ctx)

	var gatewayServer *gateway.Server
	if cfg.Gateway.Enabled {
		gatewayServer = gateway.New(cfg.Gateway, loop)
		go func() {
			if err := gatewayServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("gateway server failed: %w", err)
			}
		}()
	}

	if len(chanMgr.Names()) == 0 && gatewayServer == nil {
		slog.Warn("no channel or gateway enabled; edit the config to connect the bot", "config", config.ConfigPath())
	}

	fmt.Printf("%s running (storage=%s, data=%s).\n", cfg.Bot.Name, cfg.Bot.Storage, dataDir)
	if gatewayServer != nil {
		fmt.Printf("Gateway: http://%s\n", gatewayServer.Addr())
	}
	fmt.Println("Press Ctrl+C to stop.")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		slog.Error("server component failed", "error", runErr)
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	slog.Info("shutting down")
	chanMgr.StopAll(shutdownCtx)
	if gatewayServer != nil {
		if err := gatewayServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("gateway shutdown failed", "error", err)
		}
	}

	return runErr
}

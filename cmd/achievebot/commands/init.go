package commands

import (
	"fmt"
	"os"

	"github.com/MEKXH/achievebot/internal/config"
	"github.com/spf13/cobra"
)

func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize achievebot configuration",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := config.ConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists: %s\n", configPath)
		return nil
	}

	cfg := config.DefaultConfig()
	dataDir, err := cfg.DataDirPath()
	if err != nil {
		return err
	}

	for _, dir := range []string{config.ConfigDir(), dataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Achievebot initialized!\n")
	fmt.Printf("Config: %s\n", configPath)
	fmt.Printf("Data:   %s (storage=%s)\n", dataDir, cfg.Bot.Storage)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("1. Edit %s to enable Telegram or the HTTP gateway\n", configPath)
	fmt.Printf("2. Run 'achievebot chat' to try commands locally\n")
	fmt.Printf("3. Run 'achievebot run' to connect the bot\n")

	return nil
}

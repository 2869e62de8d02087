package commands

import (
	"strings"

	"github.com/MEKXH/achievebot/internal/config"
	"github.com/spf13/cobra"
)

var (
	logLevelOverride string
	dataDirOverride  string
)

// skipConfig lists subcommands that must work before a config file exists.
var skipConfig = map[string]bool{"init": true, "version": true}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "achievebot",
		Short:        "Achievebot - chat achievement tracker",
		Long:         `Achievebot lets chat members define achievements and grant them to each other.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipConfig[cmd.Name()] {
				return configureLogger(config.DefaultConfig(), logLevelOverride, false)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// chat prints replies on stdout; keep log lines off the terminal.
			return configureLogger(cfg, logLevelOverride, cmd.Name() == "chat")
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&logLevelOverride, "log-level", "", "Override log level (debug|info|warn|error)")
	flags.StringVar(&dataDirOverride, "data-dir", "", "Override bot.data_dir for this invocation")

	cmd.AddCommand(
		NewInitCmd(),
		NewChatCmd(),
		NewRunCmd(),
		NewCatalogCmd(),
		NewStatusCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dir := strings.TrimSpace(dataDirOverride); dir != "" {
		cfg.Bot.DataDir = dir
	}
	return cfg, nil
}

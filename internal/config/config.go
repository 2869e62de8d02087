package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. ACHIEVEBOT_BOT_NAME.
	EnvPrefix = "ACHIEVEBOT"

	DefaultBotName     = "achievebot"
	DefaultQueueSize   = 64
	DefaultGatewayPort = 18790

	StorageFile   = "file"
	StorageSQLite = "sqlite"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config root configuration
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Channels ChannelsConfig `mapstructure:"channels"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Log      LogConfig      `mapstructure:"log"`
}

// BotConfig engine and storage settings
type BotConfig struct {
	Name      string `mapstructure:"name"`
	DataDir   string `mapstructure:"data_dir"`
	Storage   string `mapstructure:"storage"`
	QueueSize int    `mapstructure:"queue_size"`
}

// ChannelsConfig channel settings
type ChannelsConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig telegram bot settings
type TelegramConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Token     string   `mapstructure:"token"`
	AllowFrom []string `mapstructure:"allow_from"`
}

// GatewayConfig server settings
type GatewayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Token   string `mapstructure:"token"`
}

// LogConfig application logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
	// Audit enables the JSONL command log under <data_dir>/state.
	Audit bool `mapstructure:"audit"`
}

// DefaultConfig returns config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			Name:      DefaultBotName,
			DataDir:   filepath.Join(ConfigDir(), "data"),
			Storage:   StorageFile,
			QueueSize: DefaultQueueSize,
		},
		Channels: ChannelsConfig{
			Telegram: TelegramConfig{
				Enabled:   false,
				AllowFrom: []string{},
			},
		},
		Gateway: GatewayConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    DefaultGatewayPort,
			Token:   "",
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
			File:   "",
		},
	}
}

// ConfigDir returns the achievebot config directory
func ConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("failed to resolve home directory, using current directory as fallback", "error", err)
		homeDir = "."
	}
	return filepath.Join(homeDir, ".achievebot")
}

// ConfigPath returns the config file path
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load loads config from file or returns defaults. A missing file is created
// with the defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := ConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(cfg); err != nil {
			return cfg, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return cfg, err
	}

	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.MatchName = func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		}
	}); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func normalizeKey(input string) string {
	input = strings.ReplaceAll(input, "_", "")
	input = strings.ReplaceAll(input, "-", "")
	return strings.ToLower(input)
}

// Save saves config to file
func Save(cfg *Config) error {
	configPath := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// Validate checks that the configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	c.Bot.Name = strings.TrimSpace(c.Bot.Name)
	if c.Bot.Name == "" {
		c.Bot.Name = DefaultBotName
	}
	if strings.ContainsAny(c.Bot.Name, " \t\r\n:,") {
		return fmt.Errorf("bot.name must be a single word without ':' or ',', got %q", c.Bot.Name)
	}

	storage := strings.ToLower(strings.TrimSpace(c.Bot.Storage))
	switch storage {
	case "":
		storage = StorageFile
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("bot.storage must be one of file, sqlite; got %q", c.Bot.Storage)
	}
	c.Bot.Storage = storage

	if c.Bot.QueueSize < 0 {
		return fmt.Errorf("bot.queue_size must not be negative, got %d", c.Bot.QueueSize)
	}
	if c.Bot.QueueSize == 0 {
		c.Bot.QueueSize = DefaultQueueSize
	}

	if c.Channels.Telegram.Enabled && strings.TrimSpace(c.Channels.Telegram.Token) == "" {
		return fmt.Errorf("channels.telegram.token is required when telegram is enabled")
	}

	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port must be between 1 and 65535, got %d", c.Gateway.Port)
	}

	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	if level == "" {
		c.Log.Level = "info"
	} else {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[level] {
			return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
		}
		c.Log.Level = level
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "":
		format = LogFormatText
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("log.format must be one of text, json; got %q", c.Log.Format)
	}
	c.Log.Format = format

	return nil
}

// DataDirPath returns the expanded data directory. An empty data_dir falls
// back to the data directory under ConfigDir.
func (c *Config) DataDirPath() (string, error) {
	dir := strings.TrimSpace(c.Bot.DataDir)
	if dir == "" {
		return filepath.Join(ConfigDir(), "data"), nil
	}
	if dir[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory for data dir: %w", err)
		}
		rest := dir[1:]
		rest = strings.TrimPrefix(rest, string(filepath.Separator))
		rest = strings.TrimPrefix(rest, "/")
		return filepath.Join(homeDir, rest), nil
	}
	return dir, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App        AppConfig
	Discord    DiscordConfig
	Logger     LoggerConfig
	Worker     WorkerConfig
	Moderation ModerationConfig
}

// AppConfig controls the ops HTTP server.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// DiscordConfig holds the gateway token and channel wiring.
type DiscordConfig struct {
	Token            string
	CommandPrefix    string
	ReportChannelID  string
	CommandChannelID string
	ExportChannelID  string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// WorkerConfig controls background loop cadence.
type WorkerConfig struct {
	HeartbeatInterval time.Duration
	KeepAliveInterval time.Duration
}

// ModerationConfig holds the word filter.
type ModerationConfig struct {
	BannedWords []string
}

// Load reads configuration from environment variables, applying defaults where possible.
// The Discord token is the only hard requirement; startup is fatal without it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is not set")
	}

	reportChannel := os.Getenv("REPORT_CHANNEL_ID")
	if reportChannel == "" {
		return nil, fmt.Errorf("REPORT_CHANNEL_ID is not set")
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "report-bot"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Discord: DiscordConfig{
			Token:            token,
			CommandPrefix:    getEnv("COMMAND_PREFIX", "!"),
			ReportChannelID:  reportChannel,
			CommandChannelID: getEnv("COMMAND_CHANNEL_ID", ""),
			// The export channel may coincide with the report channel.
			ExportChannelID: getEnv("EXPORT_CHANNEL_ID", reportChannel),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Worker: WorkerConfig{
			HeartbeatInterval: time.Duration(getEnvAsInt("HEARTBEAT_INTERVAL_MINUTES", 5)) * time.Minute,
			KeepAliveInterval: time.Duration(getEnvAsInt("KEEPALIVE_INTERVAL_MINUTES", 60)) * time.Minute,
		},
		Moderation: ModerationConfig{
			BannedWords: getEnvAsList("MODERATION_BANNED_WORDS", []string{"shit"}),
		},
	}

	return cfg, nil
}

// Addr returns the ops HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

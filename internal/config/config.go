package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	HTTPAddr string

	// WebRoot and BotRoot are the two catalog store roots. The bot side
	// additionally holds admin_ids.json.
	WebRoot   string
	BotRoot   string
	BackupDir string

	BotToken   string
	AdminSeeds []int64

	SyncInterval time.Duration
	SessionTTL   time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:      getenv("APP_SERVICE", "dukon"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		WebRoot:      getenv("WEB_DATA_DIR", "web_data"),
		BotRoot:      getenv("BOT_DATA_DIR", "bot_data"),
		BackupDir:    getenv("BACKUP_DIR", "."),
		BotToken:     strings.TrimSpace(getenv("BOT_TOKEN", "")),
		AdminSeeds:   parseIDList(os.Getenv("ADMIN_IDS")),
		SyncInterval: getenvDuration("SYNC_INTERVAL", 10*time.Second),
		SessionTTL:   getenvDuration("SESSION_TTL", 30*time.Minute),
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewSettingsHolder),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	// Bare numbers are treated as seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func parseIDList(raw string) []int64 {
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

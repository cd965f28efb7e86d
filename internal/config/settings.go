package config

import (
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// BotSettings is the runtime view of the bot store's settings.json. The web
// frontend writes the same file independently, so the holder watches it and
// swaps in new values without a restart.
type BotSettings struct {
	BotToken       string `mapstructure:"bot_token"`
	NotifyNewOrder bool   `mapstructure:"notify_new_order"`
	NotifyLowStock bool   `mapstructure:"notify_low_stock"`
	WelcomeMessage string `mapstructure:"welcome_message"`
	ContactInfo    string `mapstructure:"contact_info"`
}

func DefaultBotSettings() BotSettings {
	return BotSettings{
		NotifyNewOrder: true,
		NotifyLowStock: true,
		WelcomeMessage: "Assalomu alaykum! Mahsulotlar katalogiga xush kelibsiz!",
		ContactInfo:    "Bog'lanish: +998 90 123 45 67",
	}
}

type SettingsHolder struct {
	current atomic.Value // holds BotSettings
}

// NewSettingsHolder reads settings.json from the bot store root and keeps the
// in-memory copy current via file watching. A missing or unparsable file
// resolves to defaults rather than an error.
func NewSettingsHolder(cfg Config, log *zap.Logger) *SettingsHolder {
	v := viper.New()
	v.SetConfigFile(filepath.Join(cfg.BotRoot, "settings.json"))
	v.SetConfigType("json")

	defaults := DefaultBotSettings()
	v.SetDefault("bot_token", defaults.BotToken)
	v.SetDefault("notify_new_order", defaults.NotifyNewOrder)
	v.SetDefault("notify_low_stock", defaults.NotifyLowStock)
	v.SetDefault("welcome_message", defaults.WelcomeMessage)
	v.SetDefault("contact_info", defaults.ContactInfo)

	log = log.Named("config.settings")

	holder := &SettingsHolder{}
	holder.current.Store(loadBotSettings(v, defaults, log))

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		holder.current.Store(loadBotSettings(v, defaults, log))
		log.Info("settings reloaded", zap.String("file", e.Name))
	})

	return holder
}

// NewStaticHolder wraps fixed settings with no backing file. Used by tests
// and the sync CLI.
func NewStaticHolder(s BotSettings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.current.Store(s)
	return holder
}

func (h *SettingsHolder) Get() BotSettings {
	return h.current.Load().(BotSettings)
}

// Reload re-reads the backing file on demand, outside the watcher path.
func (h *SettingsHolder) Reload(cfg Config, log *zap.Logger) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(cfg.BotRoot, "settings.json"))
	v.SetConfigType("json")
	h.current.Store(loadBotSettings(v, DefaultBotSettings(), log.Named("config.settings")))
}

func loadBotSettings(v *viper.Viper, defaults BotSettings, log *zap.Logger) BotSettings {
	if err := v.ReadInConfig(); err != nil {
		log.Warn("settings file unreadable, using defaults", zap.Error(err))
		return defaults
	}
	out := defaults
	if err := v.Unmarshal(&out); err != nil {
		log.Warn("settings file unparsable, using defaults", zap.Error(err))
		return defaults
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all flight alert bot configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	SerpAPI  SerpAPIConfig  `mapstructure:"serpapi"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Server   ServerConfig   `mapstructure:"server"`
	Airports AirportsConfig `mapstructure:"airports"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// TelegramConfig defines the chat transport settings.
type TelegramConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// SerpAPIConfig defines the fare-search backend settings.
type SerpAPIConfig struct {
	Key     string        `mapstructure:"key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MonitorConfig defines the price-monitoring loop settings.
type MonitorConfig struct {
	Interval         time.Duration `mapstructure:"interval"`
	FirstDelay       time.Duration `mapstructure:"first_delay"`
	RenotifyCooldown time.Duration `mapstructure:"renotify_cooldown"`
	Currency         string        `mapstructure:"currency"`
}

// ServerConfig defines the keep-alive HTTP server settings.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// AirportsConfig defines the airport catalog settings.
type AirportsConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".flightbot"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("storage.path", filepath.Join(home, ".flightbot", "alerts.db"))
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", "50s")
	v.SetDefault("serpapi.key", "")
	v.SetDefault("serpapi.base_url", "https://serpapi.com/search")
	v.SetDefault("serpapi.timeout", "30s")
	v.SetDefault("monitor.interval", "30m")
	v.SetDefault("monitor.first_delay", "10s")
	v.SetDefault("monitor.renotify_cooldown", "6h")
	v.SetDefault("monitor.currency", "BRL")
	v.SetDefault("server.listen", ":10000")
	v.SetDefault("airports.path", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("FLIGHTBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

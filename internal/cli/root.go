package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/PauloCosta30/flight-alert-bot/internal/config"
	"github.com/PauloCosta30/flight-alert-bot/pkg/airports"
	"github.com/PauloCosta30/flight-alert-bot/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "flightbot",
	Short: "Flight fare alert bot - Google Flights + Telegram",
	Long: `Flight alert bot monitors flight fares on Google Flights (via SerpAPI)
and sends a Telegram message when a fare for a watched route and date drops
to or below the configured price ceiling. Alerts are created through a chat
dialog and stored durably between restarts.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.flightbot/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initCatalog loads the airport catalog, falling back to the built-in one.
func initCatalog(cfg *config.Config) (*airports.Catalog, error) {
	if cfg.Airports.Path == "" {
		return airports.Default(), nil
	}
	return airports.Load(cfg.Airports.Path)
}

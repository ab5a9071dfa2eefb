package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PauloCosta30/flight-alert-bot/internal/server"
	"github.com/PauloCosta30/flight-alert-bot/internal/telegram"
	"github.com/PauloCosta30/flight-alert-bot/pkg/conversation"
	"github.com/PauloCosta30/flight-alert-bot/pkg/fares"
	"github.com/PauloCosta30/flight-alert-bot/pkg/monitor"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot: Telegram dialog, price monitor and HTTP server",
	RunE:  runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return errors.New("telegram token not configured (set FLIGHTBOT_TELEGRAM_TOKEN)")
	}
	if cfg.SerpAPI.Key == "" {
		return errors.New("serpapi key not configured (set FLIGHTBOT_SERPAPI_KEY)")
	}

	logger := newLogger(cfg)

	store, err := initStorage(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	catalog, err := initCatalog(cfg)
	if err != nil {
		return fmt.Errorf("load airport catalog: %w", err)
	}

	tg := telegram.NewClient(cfg.Telegram.Token)
	provider := fares.NewSerpAPI(cfg.SerpAPI.Key,
		fares.WithBaseURL(cfg.SerpAPI.BaseURL),
		fares.WithTimeout(cfg.SerpAPI.Timeout),
	)

	engine := conversation.NewEngine(store, catalog, tg, logger)
	listener := telegram.NewListener(tg, engine, cfg.Telegram.PollTimeout, logger)

	gate := monitor.NewGate(store, tg, cfg.Monitor.RenotifyCooldown, logger)
	scheduler := monitor.NewScheduler(store, provider, gate,
		cfg.Monitor.Interval, cfg.Monitor.FirstDelay, cfg.Monitor.Currency, logger)

	srv := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: server.New(store, logger).Handler(),
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errCh := make(chan error, 3)
	go func() {
		logger.Info("telegram listener started")
		errCh <- listener.Run(ctx)
	}()
	go func() {
		logger.Info("price monitor started",
			"interval", cfg.Monitor.Interval,
			"cooldown", cfg.Monitor.RenotifyCooldown,
		)
		errCh <- scheduler.Run(ctx)
	}()
	go func() {
		logger.Info("http server started", "listen", cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}
}

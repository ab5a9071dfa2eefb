// Package monitor runs the recurring fare checks over the active alerts.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PauloCosta30/flight-alert-bot/pkg/fares"
	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
	"github.com/PauloCosta30/flight-alert-bot/pkg/storage"
)

// Scheduler wakes on a fixed interval and evaluates every active alert
// against current fares.
type Scheduler struct {
	store      storage.Storage
	provider   fares.Provider
	gate       *Gate
	interval   time.Duration
	firstDelay time.Duration
	currency   string
	logger     *slog.Logger
	now        func() time.Time
}

// NewScheduler creates a monitor scheduler.
func NewScheduler(store storage.Storage, provider fares.Provider, gate *Gate,
	interval, firstDelay time.Duration, currency string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:      store,
		provider:   provider,
		gate:       gate,
		interval:   interval,
		firstDelay: firstDelay,
		currency:   currency,
		logger:     logger,
		now:        time.Now,
	}
}

// Run blocks until ctx is cancelled. All ticks execute on this goroutine,
// so two ticks never overlap; a slow pass simply delays the next one.
func (s *Scheduler) Run(ctx context.Context) error {
	first := time.NewTimer(s.firstDelay)
	defer first.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-first.C:
		s.Tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one full evaluation pass. A single alert's provider failure is
// logged and skipped; the remaining alerts are still evaluated.
func (s *Scheduler) Tick(ctx context.Context) {
	alerts, err := s.store.ListActive(ctx)
	if err != nil {
		s.logger.Error("list active alerts", "error", err)
		return
	}
	activeAlerts.Set(float64(len(alerts)))

	for i := range alerts {
		if ctx.Err() != nil {
			return
		}
		s.checkAlert(ctx, &alerts[i])
	}

	ticksTotal.Inc()
	s.logger.Debug("monitoring pass finished", "alerts", len(alerts))
}

func (s *Scheduler) checkAlert(ctx context.Context, alert *model.Alert) {
	// The pass counts as a check even when the provider fails.
	defer func() {
		if err := s.store.MarkChecked(ctx, alert.ID, s.now().UTC()); err != nil {
			s.logger.Error("mark alert checked", "alert_id", alert.ID, "error", err)
		}
	}()

	quotes, err := s.provider.Search(ctx, fares.Query{
		Origin:      alert.Origin,
		Destination: alert.Destination,
		DateSpec:    alert.DateSpec,
		TripType:    alert.TripType,
		Currency:    s.currency,
	})
	if err != nil {
		searchesTotal.WithLabelValues("error").Inc()
		s.logger.Warn("fare search failed, retrying next pass",
			"alert_id", alert.ID,
			"provider", s.provider.Name(),
			"error", err,
		)
		return
	}
	searchesTotal.WithLabelValues("ok").Inc()

	best, ok := fares.Cheapest(quotes)
	if !ok || best.Price > alert.MaxPrice {
		return
	}

	if _, err := s.gate.Evaluate(ctx, alert, best); err != nil {
		s.logger.Error("evaluate notification", "alert_id", alert.ID, "error", err)
	}
}

// CheckNow is a helper for operator tooling: it runs a single pass and
// returns the number of active alerts evaluated.
func (s *Scheduler) CheckNow(ctx context.Context) (int, error) {
	alerts, err := s.store.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active alerts: %w", err)
	}
	s.Tick(ctx)
	return len(alerts), nil
}

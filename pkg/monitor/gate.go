package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PauloCosta30/flight-alert-bot/pkg/chat"
	"github.com/PauloCosta30/flight-alert-bot/pkg/fares"
	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
	"github.com/PauloCosta30/flight-alert-bot/pkg/storage"
)

// Gate decides whether a matching price is worth a notification, suppressing
// repeats for the same or higher price until the cooldown elapses.
type Gate struct {
	store    storage.Storage
	sender   chat.Sender
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewGate creates a notification gate. A zero cooldown disables time-based
// re-notification; only strictly lower prices fire again.
func NewGate(store storage.Storage, sender chat.Sender, cooldown time.Duration, logger *slog.Logger) *Gate {
	return &Gate{
		store:    store,
		sender:   sender,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate applies the notification policy to a newly observed quote and
// reports whether a notification fired.
func (g *Gate) Evaluate(ctx context.Context, alert *model.Alert, quote fares.Quote) (bool, error) {
	if !g.shouldNotify(alert, quote.Price) {
		return false, nil
	}

	// The alert may have been cancelled or paused while the fare search was
	// in flight; re-read before firing and discard the result if so.
	current, err := g.store.GetAlert(ctx, alert.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("recheck alert: %w", err)
	}
	if current.Status != model.StatusActive {
		return false, nil
	}

	if err := g.sender.Send(ctx, alert.OwnerID, FormatNotification(current, quote)); err != nil {
		return false, fmt.Errorf("deliver notification: %w", err)
	}

	firedAt := g.now().UTC()
	if err := g.store.RecordNotification(ctx, alert.ID, quote.Price, firedAt); err != nil {
		return true, fmt.Errorf("record notification: %w", err)
	}

	notificationsTotal.Inc()
	g.logger.Info("notification fired",
		"alert_id", alert.ID,
		"owner_id", alert.OwnerID,
		"price", quote.Price,
		"max_price", alert.MaxPrice,
	)
	return true, nil
}

// shouldNotify is the suppression policy: fire on the first match, on a
// strictly lower price, or once the cooldown since the last notification
// has elapsed.
func (g *Gate) shouldNotify(alert *model.Alert, price float64) bool {
	if alert.LastNotifiedPrice == nil {
		return true
	}
	if price < *alert.LastNotifiedPrice {
		return true
	}
	if g.cooldown > 0 && alert.LastNotifiedAt != nil {
		return g.now().Sub(*alert.LastNotifiedAt) >= g.cooldown
	}
	return false
}

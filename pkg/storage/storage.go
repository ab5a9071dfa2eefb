package storage

import (
	"context"
	"errors"
	"time"

	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
)

// Sentinel errors surfaced by all Storage implementations.
var (
	ErrNotFound    = errors.New("alert not found")
	ErrDuplicateID = errors.New("alert id already exists")
)

// Storage defines the persistence layer for fare alerts.
//
// Every successful write is durable before the call returns; callers never
// read-modify-write outside of these operations.
type Storage interface {
	// CreateAlert persists a new alert, assigning an ID if absent.
	// Fails with ErrDuplicateID if the ID is already taken.
	CreateAlert(ctx context.Context, alert *model.Alert) error

	// GetAlert retrieves an alert by ID, or ErrNotFound.
	GetAlert(ctx context.Context, id string) (*model.Alert, error)

	// ListByOwner returns all alerts for an owner, any status,
	// in creation order.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Alert, error)

	// ListActive returns all alerts with status active, in creation order.
	ListActive(ctx context.Context) ([]model.Alert, error)

	// UpdateAlert atomically replaces the stored record for alert.ID,
	// or ErrNotFound.
	UpdateAlert(ctx context.Context, alert *model.Alert) error

	// SetStatus atomically updates the status of an alert, or ErrNotFound.
	SetStatus(ctx context.Context, id string, status model.AlertStatus) error

	// MarkChecked records the time of the latest monitoring pass.
	MarkChecked(ctx context.Context, id string, at time.Time) error

	// RecordNotification stores the price and time of a fired notification.
	RecordNotification(ctx context.Context, id string, price float64, at time.Time) error

	// Close releases resources.
	Close() error
}

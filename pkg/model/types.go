package model

import (
	"errors"
	"fmt"
	"time"
)

// AlertStatus is the lifecycle state of a fare alert.
type AlertStatus string

const (
	StatusActive    AlertStatus = "active"
	StatusPaused    AlertStatus = "paused"
	StatusCancelled AlertStatus = "cancelled"
)

// TripType distinguishes one-way from round-trip searches.
type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
)

// DateSpec is either a single travel date (End zero) or a date range.
// For round trips the range bounds are the outbound and return dates.
type DateSpec struct {
	Start time.Time `json:"start" db:"date_start"`
	End   time.Time `json:"end,omitempty" db:"date_end"`
}

// IsRange reports whether the dates span a period rather than a single day.
func (d DateSpec) IsRange() bool {
	return !d.End.IsZero() && !d.End.Equal(d.Start)
}

func (d DateSpec) String() string {
	const layout = "02/01/2006"
	if d.IsRange() {
		return d.Start.Format(layout) + " a " + d.End.Format(layout)
	}
	return d.Start.Format(layout)
}

// Alert is a persisted request to be notified when a fare for a route and
// date falls at or below a price ceiling.
//
// OwnerID, Origin, Destination, MaxPrice, DateSpec and TripType are fixed at
// creation; only Status, LastCheckedAt, LastNotifiedPrice and LastNotifiedAt
// mutate afterwards.
type Alert struct {
	ID                string      `json:"id" db:"id"`
	OwnerID           int64       `json:"owner_id" db:"owner_id"`
	Origin            string      `json:"origin" db:"origin"`
	OriginCity        string      `json:"origin_city,omitempty" db:"origin_city"`
	Destination       string      `json:"destination,omitempty" db:"destination"`
	MaxPrice          float64     `json:"max_price" db:"max_price"`
	DateSpec          DateSpec    `json:"date_spec"`
	TripType          TripType    `json:"trip_type" db:"trip_type"`
	Status            AlertStatus `json:"status" db:"status"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	LastCheckedAt     time.Time   `json:"last_checked_at,omitempty" db:"last_checked_at"`
	LastNotifiedPrice *float64    `json:"last_notified_price,omitempty" db:"last_notified_price"`
	LastNotifiedAt    *time.Time  `json:"last_notified_at,omitempty" db:"last_notified_at"`
}

// Route renders the alert's route for display, e.g. "GRU → SSA".
func (a *Alert) Route() string {
	if a.Destination == "" {
		return a.Origin + " → qualquer destino"
	}
	return a.Origin + " → " + a.Destination
}

// Validate checks the creation-time invariants.
func (a *Alert) Validate() error {
	if a.OwnerID == 0 {
		return errors.New("owner_id is required")
	}
	if a.Origin == "" {
		return errors.New("origin is required")
	}
	if a.MaxPrice <= 0 {
		return fmt.Errorf("max_price must be positive, got %.2f", a.MaxPrice)
	}
	if a.DateSpec.Start.IsZero() {
		return errors.New("date_spec is required")
	}
	if !a.DateSpec.End.IsZero() && a.DateSpec.End.Before(a.DateSpec.Start) {
		return errors.New("date_spec end precedes start")
	}
	switch a.TripType {
	case TripOneWay, TripRoundTrip:
	default:
		return fmt.Errorf("unknown trip type %q", a.TripType)
	}
	return nil
}

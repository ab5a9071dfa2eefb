package fares

import (
	"context"
	"errors"

	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
)

// Transient provider failures. Both are retried on the next monitoring pass.
var (
	ErrUnavailable   = errors.New("fare provider unavailable")
	ErrQuotaExceeded = errors.New("fare provider quota exceeded")
)

// Query describes one fare search.
type Query struct {
	Origin      string
	Destination string // empty means open-destination search
	DateSpec    model.DateSpec
	TripType    model.TripType
	Currency    string
}

// Quote is one priced itinerary returned by a provider.
type Quote struct {
	Price        float64 `json:"price"`
	ItineraryRef string  `json:"itinerary_ref"`
}

// Provider is the fare-search backend contract.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Search returns zero or more quotes for the query. Failures are
	// reported as (or wrap) ErrUnavailable or ErrQuotaExceeded.
	Search(ctx context.Context, q Query) ([]Quote, error)
}

// Cheapest returns the lowest-priced quote, or false for an empty slice.
// Ties are broken by first occurrence.
func Cheapest(quotes []Quote) (Quote, bool) {
	if len(quotes) == 0 {
		return Quote{}, false
	}
	best := quotes[0]
	for _, q := range quotes[1:] {
		if q.Price < best.Price {
			best = q
		}
	}
	return best, true
}

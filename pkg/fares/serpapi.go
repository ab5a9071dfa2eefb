package fares

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
)

const serpAPIBaseURL = "https://serpapi.com/search"

// SerpAPI searches fares through the SerpAPI Google Flights engine.
type SerpAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// SerpAPIOption customizes the client.
type SerpAPIOption func(*SerpAPI)

// WithBaseURL overrides the API endpoint (used in tests).
func WithBaseURL(u string) SerpAPIOption {
	return func(s *SerpAPI) { s.baseURL = u }
}

// WithTimeout overrides the HTTP timeout.
func WithTimeout(d time.Duration) SerpAPIOption {
	return func(s *SerpAPI) { s.client.Timeout = d }
}

// NewSerpAPI creates a Google Flights client backed by SerpAPI.
func NewSerpAPI(apiKey string, opts ...SerpAPIOption) *SerpAPI {
	s := &SerpAPI{
		apiKey:  apiKey,
		baseURL: serpAPIBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SerpAPI) Name() string { return "google_flights" }

func (s *SerpAPI) Search(ctx context.Context, q Query) ([]Quote, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", q.Origin)
	if q.Destination != "" {
		params.Set("arrival_id", q.Destination)
	}
	params.Set("outbound_date", q.DateSpec.Start.Format("2006-01-02"))
	if q.TripType == model.TripRoundTrip {
		params.Set("type", "1")
		if q.DateSpec.IsRange() {
			params.Set("return_date", q.DateSpec.End.Format("2006-01-02"))
		}
	} else {
		params.Set("type", "2")
	}
	currency := q.Currency
	if currency == "" {
		currency = "BRL"
	}
	params.Set("currency", currency)
	params.Set("hl", "pt")
	params.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("serpapi status %d: %w", resp.StatusCode, ErrQuotaExceeded)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("serpapi status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w: %w", ErrUnavailable, err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("serpapi: %s: %w", result.Error, ErrUnavailable)
	}

	var quotes []Quote
	for _, f := range append(result.BestFlights, result.OtherFlights...) {
		if f.Price <= 0 {
			continue
		}
		quotes = append(quotes, Quote{
			Price:        f.Price,
			ItineraryRef: f.itineraryRef(),
		})
	}
	return quotes, nil
}

type searchResponse struct {
	Error        string         `json:"error"`
	BestFlights  []flightResult `json:"best_flights"`
	OtherFlights []flightResult `json:"other_flights"`
}

type flightResult struct {
	Price   float64 `json:"price"`
	Flights []struct {
		Airline      string `json:"airline"`
		FlightNumber string `json:"flight_number"`
	} `json:"flights"`
}

// itineraryRef builds an opaque reference from the first leg.
func (f flightResult) itineraryRef() string {
	if len(f.Flights) == 0 {
		return ""
	}
	leg := f.Flights[0]
	if leg.FlightNumber == "" {
		return leg.Airline
	}
	return leg.Airline + " " + leg.FlightNumber
}

package conversation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PauloCosta30/flight-alert-bot/pkg/airports"
	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
)

// ErrValidation marks bad user input during a dialog. It is always recovered
// locally with a re-prompt and never surfaced to the transport as a failure.
var ErrValidation = errors.New("invalid input")

var dateLayouts = []string{"02/01/2006", "2006-01-02", "02/01/06"}

// route holds a parsed origin and optional destination.
type route struct {
	origin      airports.Airport
	destination *airports.Airport
}

// parseRoute accepts "ORIGEM" or "ORIGEM > DESTINO", where each side is a
// city name or IATA code known to the catalog. A missing destination means
// an open-destination search.
func parseRoute(catalog *airports.Catalog, input string) (route, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return route{}, fmt.Errorf("%w: informe a origem", ErrValidation)
	}

	parts := strings.SplitN(strings.ReplaceAll(input, "->", ">"), ">", 2)
	origin, ok := catalog.Resolve(parts[0])
	if !ok {
		return route{}, fmt.Errorf("%w: não conheço a origem %q", ErrValidation, strings.TrimSpace(parts[0]))
	}

	r := route{origin: origin}
	if len(parts) == 2 {
		dest, ok := catalog.Resolve(parts[1])
		if !ok {
			return route{}, fmt.Errorf("%w: não conheço o destino %q", ErrValidation, strings.TrimSpace(parts[1]))
		}
		if dest.Code == origin.Code {
			return route{}, fmt.Errorf("%w: origem e destino são iguais", ErrValidation)
		}
		r.destination = &dest
	}
	return r, nil
}

// parsePrice accepts "450", "450.50", "450,50" and "R$ 450".
func parsePrice(input string) (float64, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "R$"), "r$")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")

	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q não é um valor numérico", ErrValidation, input)
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: o preço máximo deve ser maior que zero", ErrValidation)
	}
	return price, nil
}

// parseDateSpec accepts a single date or a range ("10/01/2026 a 20/01/2026").
func parseDateSpec(input string) (model.DateSpec, error) {
	s := strings.TrimSpace(input)
	lower := strings.ToLower(s)

	var parts []string
	for _, sep := range []string{" a ", " até ", " ate "} {
		if idx := strings.Index(lower, sep); idx >= 0 {
			parts = []string{s[:idx], s[idx+len(sep):]}
			break
		}
	}
	if parts == nil {
		parts = []string{s}
	}

	start, err := parseDate(parts[0])
	if err != nil {
		return model.DateSpec{}, err
	}
	spec := model.DateSpec{Start: start}

	if len(parts) == 2 {
		end, err := parseDate(parts[1])
		if err != nil {
			return model.DateSpec{}, err
		}
		if end.Before(start) {
			return model.DateSpec{}, fmt.Errorf("%w: a data final vem antes da inicial", ErrValidation)
		}
		spec.End = end
	}
	return spec, nil
}

func parseDate(input string) (time.Time, error) {
	s := strings.TrimSpace(input)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: não entendi a data %q (use DD/MM/AAAA)", ErrValidation, s)
}

// parseTripType accepts the menu number or the words used in the prompt.
func parseTripType(input string) (model.TripType, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "ida", "somente ida", "só ida", "so ida", "one way":
		return model.TripOneWay, nil
	case "2", "ida e volta", "volta", "round trip":
		return model.TripRoundTrip, nil
	}
	return "", fmt.Errorf("%w: responda 1 (somente ida) ou 2 (ida e volta)", ErrValidation)
}

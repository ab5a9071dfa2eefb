package monitor

import (
	"fmt"
	"strings"

	"github.com/PauloCosta30/flight-alert-bot/pkg/fares"
	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
)

// FormatNotification renders the chat message for a matched fare.
func FormatNotification(alert *model.Alert, quote fares.Quote) string {
	var b strings.Builder
	b.WriteString("🚨 Oferta encontrada!\n")
	fmt.Fprintf(&b, "%s\n", alert.Route())
	fmt.Fprintf(&b, "📅 %s\n", alert.DateSpec)
	fmt.Fprintf(&b, "💰 R$ %.2f (seu limite: R$ %.2f)", quote.Price, alert.MaxPrice)
	if quote.ItineraryRef != "" {
		fmt.Fprintf(&b, "\n✈️ %s", quote.ItineraryRef)
	}
	return b.String()
}

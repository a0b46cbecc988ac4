package notifier

import (
	"fmt"
	"strings"

	"RailSentinel/internal/model"
	"RailSentinel/internal/watchlist"
)

// recommendationBadge maps each recommendation to a report headline.
func recommendationBadge(rec model.Recommendation) string {
	switch rec {
	case model.RecommendBuyNow:
		return "🟢 <b>BUY NOW</b>"
	case model.RecommendWait:
		return "🟡 <b>WAIT</b>"
	case model.RecommendPriceAlert:
		return "🔔 <b>PRICE ALERT</b>"
	case model.RecommendNoData:
		return "⚪ <b>NO DATA</b>"
	}
	return string(rec)
}

// FormatResult renders one analysis result as a Telegram message.
func FormatResult(res *model.OptimizationResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s | %s\n\n", recommendationBadge(res.Recommendation), res.RouteKey))
	b.WriteString(fmt.Sprintf("Current price: %s €\n", res.CurrentPrice))
	if res.HistoricalLow != nil && res.HistoricalHigh != nil {
		b.WriteString(fmt.Sprintf("History: %s € – %s €\n", res.HistoricalLow, res.HistoricalHigh))
	}
	if res.PriceTrend != "" {
		b.WriteString(fmt.Sprintf("Trend: %s\n", res.PriceTrend))
	}
	b.WriteString(fmt.Sprintf("Departure in %d days\n", res.DaysUntilDeparture))
	b.WriteString(fmt.Sprintf("Confidence: %.0f%%\n\n", res.Confidence*100))

	if len(res.Factors) > 0 {
		b.WriteString("📋 <b>Factors:</b>\n")
		for _, f := range res.Factors {
			b.WriteString(fmt.Sprintf("  • %s (×%.2f)\n", f.Description, f.Weight))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("👉 %s\n", res.SuggestedAction))
	if res.PurchaseWindow != "" {
		b.WriteString(fmt.Sprintf("Window: %s\n", res.PurchaseWindow))
	}
	return b.String()
}

// FormatWatchlist renders the tracked routes for display.
func FormatWatchlist(entries []watchlist.Entry) string {
	if len(entries) == 0 {
		return "No routes are being tracked.\nUse the watch command to add one."
	}
	var b strings.Builder
	b.WriteString("🚄 <b>Tracked routes:</b>\n\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("  • %s → %s on %s (%s)\n",
			e.OriginCode, e.DestinationCode, e.TravelDate.Format("2006-01-02"), e.TrainType))
	}
	return b.String()
}

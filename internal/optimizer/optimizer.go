package optimizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"RailSentinel/internal/analyzer"
	"RailSentinel/internal/engine"
	"RailSentinel/internal/model"
)

// ErrInvalidInput indicates an out-of-domain argument: a non-positive price
// or a series that is not in chronological order. The core never substitutes
// defaults for these; callers must validate upstream.
var ErrInvalidInput = errors.New("invalid input")

// Optimizer turns a route's price history and its current price into a
// purchase-timing recommendation. It is stateless and safe for concurrent
// use across route keys.
type Optimizer struct {
	analyzer *analyzer.Analyzer
}

// New returns an Optimizer with default analysis settings.
func New() *Optimizer {
	return &Optimizer{analyzer: analyzer.New()}
}

// Analyze runs the full pipeline: validate inputs, characterize the series,
// evaluate the rule chain, assemble the result. An empty series is not an
// error; it yields a NO_DATA result. A departure in the past counts as 0
// days away.
func (o *Optimizer) Analyze(routeKey string, currentPrice decimal.Decimal, series []model.PriceObservation, daysUntilDeparture int) (*model.OptimizationResult, error) {
	if !currentPrice.IsPositive() {
		return nil, fmt.Errorf("%w: current price must be positive, got %s", ErrInvalidInput, currentPrice)
	}
	for i, obs := range series {
		if !obs.Price.IsPositive() {
			return nil, fmt.Errorf("%w: observation %d has non-positive price %s", ErrInvalidInput, i, obs.Price)
		}
		if i > 0 && obs.ObservedAt.Before(series[i-1].ObservedAt) {
			return nil, fmt.Errorf("%w: series not in chronological order at observation %d", ErrInvalidInput, i)
		}
	}
	if daysUntilDeparture < 0 {
		daysUntilDeparture = 0
	}

	if len(series) == 0 {
		return assemble(routeKey, currentPrice, daysUntilDeparture, nil, engine.Evaluate(engine.Input{})), nil
	}

	stats, err := o.analyzer.Analyze(series, currentPrice)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", routeKey, err)
	}

	decision := engine.Evaluate(engine.Input{
		Stats:              stats,
		CurrentPrice:       currentPrice,
		DaysUntilDeparture: daysUntilDeparture,
	})

	return assemble(routeKey, currentPrice, daysUntilDeparture, stats, decision), nil
}

// assemble is the pure mapping from statistics plus engine decision to the
// immutable result record.
func assemble(routeKey string, currentPrice decimal.Decimal, days int, stats *model.PriceStatistics, decision engine.Decision) *model.OptimizationResult {
	res := &model.OptimizationResult{
		RouteKey:           routeKey,
		CurrentPrice:       currentPrice,
		Recommendation:     decision.Recommendation,
		Confidence:         decision.Confidence,
		Reasoning:          reasoning(decision),
		SuggestedAction:    suggestedAction(decision.Recommendation),
		DaysUntilDeparture: days,
		Factors:            decision.Factors,
		PurchaseWindow:     purchaseWindow(decision.Recommendation, days),
	}
	if stats != nil {
		res.PriceTrend = stats.Trend
		res.HistoricalLow = &stats.HistoricalLow
		res.HistoricalHigh = &stats.HistoricalHigh
		res.PriceVolatility = &stats.Volatility
	}
	return res
}

func reasoning(decision engine.Decision) string {
	if len(decision.Factors) == 0 {
		return "insufficient historical data"
	}
	parts := make([]string, len(decision.Factors))
	for i, f := range decision.Factors {
		parts[i] = f.Description
	}
	return strings.Join(parts, ". ") + "."
}

func suggestedAction(rec model.Recommendation) string {
	switch rec {
	case model.RecommendBuyNow:
		return "Book your ticket immediately"
	case model.RecommendWait:
		return "Wait and monitor prices for a few more days"
	case model.RecommendPriceAlert:
		return "Excellent price! Consider booking if your plans are confirmed"
	case model.RecommendNoData:
		return "Monitor prices to gather more data"
	}
	return "Monitor prices"
}

func purchaseWindow(rec model.Recommendation, days int) string {
	switch rec {
	case model.RecommendBuyNow:
		return "now"
	case model.RecommendWait:
		n := days
		if n > 7 {
			n = 7
		}
		return fmt.Sprintf("monitor for %d more days", n)
	case model.RecommendPriceAlert:
		return "verify and buy"
	}
	return "unknown"
}

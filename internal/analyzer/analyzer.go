package analyzer

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
)

// ErrDegenerateSeries indicates a zero historical low or mean. Ticket prices
// are strictly positive, so a zero here means corrupt upstream data; the
// ratios in the statistics would be undefined and analysis aborts.
var ErrDegenerateSeries = errors.New("degenerate series: historical low or mean is zero")

// recentWindow is the number of trailing observations used for the recent
// mean and the trend classification.
const recentWindow = 7

// trendThreshold is the relative change beyond which the recent window is
// classified as rising or falling. Test expectations depend on 5%.
var trendThreshold = decimal.RequireFromString("0.05")

// Analyzer computes descriptive statistics over a price series. It holds no
// state besides tuning knobs and is safe for concurrent use.
type Analyzer struct {
	// OutlierMultiplier is the width of the outlier band in standard
	// deviations around the historical mean.
	OutlierMultiplier decimal.Decimal
}

// New returns an Analyzer with the default 2-sigma outlier band.
func New() *Analyzer {
	return &Analyzer{OutlierMultiplier: decimal.NewFromInt(2)}
}

// Analyze characterizes a chronological, non-empty price series against the
// current observed price. The input series is never mutated.
func (a *Analyzer) Analyze(series []model.PriceObservation, current decimal.Decimal) (*model.PriceStatistics, error) {
	if len(series) == 0 {
		return nil, errors.New("empty series")
	}

	prices := make([]decimal.Decimal, len(series))
	for i, obs := range series {
		prices[i] = obs.Price
	}

	low, high := prices[0], prices[0]
	sum := decimal.Zero
	for _, p := range prices {
		if p.LessThan(low) {
			low = p
		}
		if p.GreaterThan(high) {
			high = p
		}
		sum = sum.Add(p)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(prices))))

	if low.IsZero() || mean.IsZero() {
		return nil, ErrDegenerateSeries
	}

	recent := prices
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	recentSum := decimal.Zero
	for _, p := range recent {
		recentSum = recentSum.Add(p)
	}
	recentMean := recentSum.Div(decimal.NewFromInt(int64(len(recent))))

	stdev := populationStdev(prices, mean)

	return &model.PriceStatistics{
		Observations:   len(prices),
		HistoricalLow:  low,
		HistoricalHigh: high,
		HistoricalMean: mean,
		RecentMean:     recentMean,
		Volatility:     stdev,
		VsLow:          current.Div(low),
		VsMean:         current.Div(mean),
		Trend:          classifyTrend(recent),
		IsOutlier:      current.Sub(mean).Abs().GreaterThan(stdev.Mul(a.OutlierMultiplier)),
	}, nil
}

// populationStdev divides by N, not N-1, and is defined as exactly 0 for
// fewer than 2 observations.
func populationStdev(prices []decimal.Decimal, mean decimal.Decimal) decimal.Decimal {
	if len(prices) < 2 {
		return decimal.Zero
	}
	variance := decimal.Zero
	for _, p := range prices {
		diff := p.Sub(mean)
		variance = variance.Add(diff.Mul(diff))
	}
	variance = variance.Div(decimal.NewFromInt(int64(len(prices))))
	return decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))
}

// classifyTrend compares the first and last price of the recent window.
// With fewer than 2 points no direction is knowable and the trend is stable.
func classifyTrend(window []decimal.Decimal) model.Trend {
	if len(window) < 2 {
		return model.TrendStable
	}
	first, last := window[0], window[len(window)-1]
	change := last.Sub(first).Div(first)
	switch {
	case change.GreaterThan(trendThreshold):
		return model.TrendRising
	case change.LessThan(trendThreshold.Neg()):
		return model.TrendFalling
	default:
		return model.TrendStable
	}
}

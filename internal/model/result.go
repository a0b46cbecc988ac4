package model

import "github.com/shopspring/decimal"

// Recommendation is the graded purchase-timing advice.
type Recommendation string

const (
	RecommendBuyNow     Recommendation = "BUY_NOW"
	RecommendWait       Recommendation = "WAIT"
	RecommendPriceAlert Recommendation = "PRICE_ALERT"
	RecommendNoData     Recommendation = "NO_DATA"
)

// Trend classifies the direction of recent price movement.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// PriceStatistics is the descriptive characterization of a price series
// against the current observed price. Computed fresh on every analysis,
// never cached.
type PriceStatistics struct {
	Observations   int
	HistoricalLow  decimal.Decimal
	HistoricalHigh decimal.Decimal
	HistoricalMean decimal.Decimal
	RecentMean     decimal.Decimal // trailing window, at most 7 points
	Volatility     decimal.Decimal // population standard deviation
	VsLow          decimal.Decimal // current price / historical low
	VsMean         decimal.Decimal // current price / historical mean
	Trend          Trend
	IsOutlier      bool
}

// Factor is one triggered decision rule: its tag, its confidence
// contribution and a human-readable justification.
type Factor struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// OptimizationResult is the final output of one analysis call.
type OptimizationResult struct {
	RouteKey           string           `json:"route_key"`
	CurrentPrice       decimal.Decimal  `json:"current_price"`
	Recommendation     Recommendation   `json:"recommendation"`
	Confidence         float64          `json:"confidence"`
	Reasoning          string           `json:"reasoning"`
	SuggestedAction    string           `json:"suggested_action"`
	DaysUntilDeparture int              `json:"days_until_departure"`
	Factors            []Factor         `json:"factors,omitempty"`
	PriceTrend         Trend            `json:"price_trend,omitempty"`
	PurchaseWindow     string           `json:"optimal_purchase_window,omitempty"`
	HistoricalLow      *decimal.Decimal `json:"historical_low,omitempty"`
	HistoricalHigh     *decimal.Decimal `json:"historical_high,omitempty"`
	PriceVolatility    *decimal.Decimal `json:"price_volatility,omitempty"`
}

package engine

import (
	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
)

// Ratio thresholds for the price quality rule. Within 10% of the historical
// low counts as excellent; 10% below the historical mean counts as good.
var (
	ratioExcellent = decimal.RequireFromString("1.10")
	ratioGood      = decimal.RequireFromString("0.90")
)

// outcome is what a single rule produces: at most one triggered factor and
// an optional override of the running recommendation. An empty rec keeps
// the current recommendation.
type outcome struct {
	factor *model.Factor
	rec    model.Recommendation
}

// rule is one step of the override chain. It sees the accumulated state of
// the rules before it but must not mutate it.
type rule struct {
	name string
	eval func(in Input, st chainState) outcome
}

// ruleChain is evaluated strictly in order; a later rule wins unless its
// own guard says otherwise. Reordering the chain changes results.
var ruleChain = []rule{
	{name: "urgency", eval: urgencyRule},
	{name: "price_quality", eval: priceQualityRule},
	{name: "trend", eval: trendRule},
	{name: "outlier", eval: outlierRule},
}

// chainState is the accumulator threaded through the rule chain.
type chainState struct {
	rec     model.Recommendation
	factors []model.Factor
}

func (s chainState) triggered(name string) bool {
	for _, f := range s.factors {
		if f.Name == name {
			return true
		}
	}
	return false
}

// urgencyRule forces an immediate purchase when departure is 3 days away or
// less. Up to a week out it only records urgency without forcing anything.
func urgencyRule(in Input, _ chainState) outcome {
	switch {
	case in.DaysUntilDeparture <= 3:
		return outcome{
			factor: &model.Factor{Name: "urgent", Weight: 0.8, Description: "Very close to departure"},
			rec:    model.RecommendBuyNow,
		}
	case in.DaysUntilDeparture <= 7:
		return outcome{
			factor: &model.Factor{Name: "soon", Weight: 0.6, Description: "Close to departure"},
		}
	}
	return outcome{}
}

// priceQualityRule judges the current price against history. A price within
// 10% of the historical low buys now regardless of urgency; a price merely
// below average is noted but still favors waiting for further drops.
func priceQualityRule(in Input, _ chainState) outcome {
	if in.Stats.VsLow.LessThanOrEqual(ratioExcellent) {
		return outcome{
			factor: &model.Factor{Name: "excellent_price", Weight: 0.9, Description: "Excellent price, close to the historical low"},
			rec:    model.RecommendBuyNow,
		}
	}
	if in.Stats.VsMean.LessThanOrEqual(ratioGood) {
		return outcome{
			factor: &model.Factor{Name: "good_price", Weight: 0.7, Description: "Good price, below the historical average"},
		}
	}
	return outcome{}
}

// trendRule reads the recent direction. Falling prices advise waiting unless
// an earlier rule already locked in a purchase; rising prices push to buy
// only when the price itself has already been judged good.
func trendRule(in Input, st chainState) outcome {
	switch in.Stats.Trend {
	case model.TrendFalling:
		out := outcome{
			factor: &model.Factor{Name: "falling_trend", Weight: 0.6, Description: "Prices are falling"},
		}
		if st.rec != model.RecommendBuyNow {
			out.rec = model.RecommendWait
		}
		return out
	case model.TrendRising:
		out := outcome{
			factor: &model.Factor{Name: "rising_trend", Weight: 0.6, Description: "Prices are rising"},
		}
		if st.triggered("excellent_price") || st.triggered("good_price") {
			out.rec = model.RecommendBuyNow
		}
		return out
	}
	return outcome{}
}

// outlierRule flags a price sitting more than the outlier band below the
// historical mean. Such a price is suspiciously good and worth manual
// verification, overriding whatever the chain decided so far. A series with
// zero dispersion cannot anchor an anomaly, so the rule requires positive
// volatility.
func outlierRule(in Input, _ chainState) outcome {
	if in.Stats.IsOutlier && in.Stats.Volatility.IsPositive() && in.CurrentPrice.LessThan(in.Stats.HistoricalMean) {
		return outcome{
			factor: &model.Factor{Name: "anomalous_low_price", Weight: 0.85, Description: "Unusually low price, verify the fare before booking"},
			rec:    model.RecommendPriceAlert,
		}
	}
	return outcome{}
}

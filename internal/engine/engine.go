package engine

import (
	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
)

// Input bundles everything the rule chain may look at. Stats is nil when
// the route has no recorded history.
type Input struct {
	Stats              *model.PriceStatistics
	CurrentPrice       decimal.Decimal
	DaysUntilDeparture int
}

// Decision is the engine output: the final recommendation, the confidence
// in it, and the ordered list of factors that produced it.
type Decision struct {
	Recommendation model.Recommendation
	Confidence     float64
	Factors        []model.Factor
}

// Evaluate folds the fixed rule chain over the input. Rules run in order;
// each may append one factor and override the running recommendation, so a
// later rule wins unless its own guard defers to the accumulated state.
// Confidence is the arithmetic mean of the triggered factors' weights.
func Evaluate(in Input) Decision {
	if in.Stats == nil {
		return Decision{Recommendation: model.RecommendNoData, Confidence: 0}
	}
	if in.DaysUntilDeparture < 0 {
		in.DaysUntilDeparture = 0
	}

	st := chainState{rec: model.RecommendWait}
	for _, r := range ruleChain {
		out := r.eval(in, st)
		if out.factor != nil {
			st.factors = append(st.factors, *out.factor)
		}
		if out.rec != "" {
			st.rec = out.rec
		}
	}

	// No rule fired: insufficient signal, stay conservative.
	if len(st.factors) == 0 {
		st.factors = append(st.factors, model.Factor{
			Name:        "default_wait",
			Weight:      0.5,
			Description: "No strong signal either way, keep monitoring prices",
		})
	}

	sum := 0.0
	for _, f := range st.factors {
		sum += f.Weight
	}

	return Decision{
		Recommendation: st.rec,
		Confidence:     sum / float64(len(st.factors)),
		Factors:        st.factors,
	}
}

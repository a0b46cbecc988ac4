package optimizer

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
)

const testKey = "MADRI_BARCE_2026-04-01_AVE"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func series(t *testing.T, prices ...string) []model.PriceObservation {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	obs := make([]model.PriceObservation, len(prices))
	for i, p := range prices {
		obs[i] = model.PriceObservation{
			RouteKey:   testKey,
			Price:      decimal.RequireFromString(p),
			Currency:   "EUR",
			ObservedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}
	}
	return obs
}

func TestAnalyze_EmptySeriesIsNoData(t *testing.T) {
	for _, days := range []int{0, 5, 60} {
		res, err := New().Analyze(testKey, dec("120"), nil, days)
		if err != nil {
			t.Fatalf("empty series must not error: %v", err)
		}
		if res.Recommendation != model.RecommendNoData {
			t.Errorf("days=%d: expected NO_DATA, got %s", days, res.Recommendation)
		}
		if res.Confidence != 0 {
			t.Errorf("days=%d: expected confidence 0, got %.2f", days, res.Confidence)
		}
		if res.Reasoning != "insufficient historical data" {
			t.Errorf("days=%d: unexpected reasoning %q", days, res.Reasoning)
		}
		if res.HistoricalLow != nil || res.HistoricalHigh != nil || res.PriceVolatility != nil {
			t.Errorf("days=%d: statistics fields must be absent for NO_DATA", days)
		}
		if res.PurchaseWindow != "unknown" {
			t.Errorf("days=%d: expected unknown window, got %q", days, res.PurchaseWindow)
		}
	}
}

func TestAnalyze_ScenarioA(t *testing.T) {
	s := series(t, "100", "100", "100", "100", "100", "100", "100")
	res, err := New().Analyze(testKey, dec("95"), s, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Recommendation != model.RecommendBuyNow {
		t.Fatalf("expected BUY_NOW, got %s", res.Recommendation)
	}
	if math.Abs(res.Confidence-0.9) > 1e-9 {
		t.Errorf("expected confidence 0.9, got %.3f", res.Confidence)
	}
	if res.PurchaseWindow != "now" {
		t.Errorf("expected window \"now\", got %q", res.PurchaseWindow)
	}
	if res.SuggestedAction != "Book your ticket immediately" {
		t.Errorf("unexpected action %q", res.SuggestedAction)
	}
}

func TestAnalyze_ScenarioB(t *testing.T) {
	s := series(t, "100", "95", "90", "85", "80", "75", "70")
	res, err := New().Analyze(testKey, dec("70"), s, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PriceTrend != model.TrendFalling {
		t.Errorf("expected falling trend, got %s", res.PriceTrend)
	}
	if res.Recommendation != model.RecommendBuyNow {
		t.Fatalf("excellent price at the historical low must hold BUY_NOW, got %s", res.Recommendation)
	}
	if res.HistoricalLow == nil || !res.HistoricalLow.Equal(dec("70")) {
		t.Errorf("expected historical low 70, got %v", res.HistoricalLow)
	}
	if res.HistoricalHigh == nil || !res.HistoricalHigh.Equal(dec("100")) {
		t.Errorf("expected historical high 100, got %v", res.HistoricalHigh)
	}
}

func TestAnalyze_ScenarioC(t *testing.T) {
	s := series(t, "50", "50", "50", "50", "50")
	res, err := New().Analyze(testKey, dec("70"), s, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Recommendation != model.RecommendWait {
		t.Fatalf("expected default WAIT, got %s", res.Recommendation)
	}
	if math.Abs(res.Confidence-0.5) > 1e-9 {
		t.Errorf("expected confidence 0.5, got %.3f", res.Confidence)
	}
	if res.PurchaseWindow != "monitor for 7 more days" {
		t.Errorf("WAIT window caps at 7 days, got %q", res.PurchaseWindow)
	}
}

func TestAnalyze_WaitWindowUsesRemainingDays(t *testing.T) {
	s := series(t, "50", "52", "51", "50", "52")
	res, err := New().Analyze(testKey, dec("70"), s, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Recommendation != model.RecommendWait {
		t.Fatalf("expected WAIT, got %s", res.Recommendation)
	}
	if res.PurchaseWindow != "monitor for 4 more days" {
		t.Errorf("expected 4-day window, got %q", res.PurchaseWindow)
	}
}

func TestAnalyze_ExcellentPriceAtHistoricalLow(t *testing.T) {
	s := series(t, "80", "75", "82", "79")
	res, err := New().Analyze(testKey, dec("75"), s, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Reasoning, "Excellent price") {
		t.Errorf("price at historical low must trigger excellent_price, reasoning: %q", res.Reasoning)
	}
}

func TestAnalyze_InvalidInput(t *testing.T) {
	good := series(t, "80", "75")

	if _, err := New().Analyze(testKey, dec("0"), good, 10); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero current price: expected ErrInvalidInput, got %v", err)
	}
	if _, err := New().Analyze(testKey, dec("-5"), good, 10); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative current price: expected ErrInvalidInput, got %v", err)
	}

	bad := series(t, "80", "75")
	bad[1].Price = decimal.Zero
	if _, err := New().Analyze(testKey, dec("70"), bad, 10); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("non-positive observation: expected ErrInvalidInput, got %v", err)
	}

	unsorted := series(t, "80", "75")
	unsorted[0].ObservedAt, unsorted[1].ObservedAt = unsorted[1].ObservedAt, unsorted[0].ObservedAt
	if _, err := New().Analyze(testKey, dec("70"), unsorted, 10); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unsorted series: expected ErrInvalidInput, got %v", err)
	}
}

func TestAnalyze_PastDepartureClampedToZero(t *testing.T) {
	s := series(t, "50", "52", "51")
	res, err := New().Analyze(testKey, dec("70"), s, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DaysUntilDeparture != 0 {
		t.Errorf("expected days clamped to 0, got %d", res.DaysUntilDeparture)
	}
	if res.Recommendation != model.RecommendBuyNow {
		t.Errorf("departure already passed must be urgent, got %s", res.Recommendation)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	s := series(t, "61.30", "58.90", "55.00", "62.15", "59.40", "57.75", "60.00")
	o := New()
	first, err := o.Analyze(testKey, dec("56.80"), s, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := o.Analyze(testKey, dec("56.80"), s, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between identical runs:\n%+v\n%+v", first, second)
	}
}

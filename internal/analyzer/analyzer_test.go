package analyzer

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
)

func series(t *testing.T, prices ...string) []model.PriceObservation {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	obs := make([]model.PriceObservation, len(prices))
	for i, p := range prices {
		obs[i] = model.PriceObservation{
			RouteKey:   "MADRI_BARCE_2026-04-01_AVE",
			Price:      decimal.RequireFromString(p),
			Currency:   "EUR",
			ObservedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}
	}
	return obs
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAnalyze_IdenticalPrices(t *testing.T) {
	stats, err := New().Analyze(series(t, "100", "100", "100", "100"), dec("100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.Volatility.IsZero() {
		t.Errorf("expected zero stdev, got %s", stats.Volatility)
	}
	if stats.Trend != model.TrendStable {
		t.Errorf("expected stable trend, got %s", stats.Trend)
	}
	if stats.IsOutlier {
		t.Error("current price equal to mean must not be an outlier")
	}
}

func TestAnalyze_ZeroStdevOutlier(t *testing.T) {
	// With zero dispersion, any deviation from the mean is flagged.
	stats, err := New().Analyze(series(t, "100", "100", "100"), dec("95"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.IsOutlier {
		t.Error("expected outlier flag for price differing from mean with zero stdev")
	}
}

func TestAnalyze_SinglePoint(t *testing.T) {
	stats, err := New().Analyze(series(t, "42.50"), dec("42.50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.HistoricalMean.Equal(dec("42.50")) || !stats.RecentMean.Equal(dec("42.50")) {
		t.Errorf("single-point series: mean=%s recent=%s, want both 42.50", stats.HistoricalMean, stats.RecentMean)
	}
	if !stats.Volatility.IsZero() {
		t.Errorf("expected zero stdev for single point, got %s", stats.Volatility)
	}
	if stats.Trend != model.TrendStable {
		t.Errorf("expected stable trend for single point, got %s", stats.Trend)
	}
}

func TestAnalyze_RecentWindow(t *testing.T) {
	// Ten observations; recent mean must cover only the trailing seven.
	s := series(t, "10", "10", "10", "70", "70", "70", "70", "70", "70", "70")
	stats, err := New().Analyze(s, dec("70"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.RecentMean.Equal(dec("70")) {
		t.Errorf("recent mean should be 70 over the last 7 points, got %s", stats.RecentMean)
	}
	if !stats.HistoricalMean.Equal(dec("52")) {
		t.Errorf("historical mean should be 52, got %s", stats.HistoricalMean)
	}
}

func TestAnalyze_PopulationStdev(t *testing.T) {
	// Deviations ±15, ±10, ±5, 0 around mean 85: variance 700/7 = 100.
	stats, err := New().Analyze(series(t, "100", "95", "90", "85", "80", "75", "70"), dec("70"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.Volatility.Equal(dec("10")) {
		t.Errorf("expected population stdev 10, got %s", stats.Volatility)
	}
	if stats.IsOutlier {
		t.Error("70 is within mean±2σ (65..105), must not be an outlier")
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name   string
		prices []string
		want   model.Trend
	}{
		{"rising above threshold", []string{"100", "106"}, model.TrendRising},
		{"exactly 5 percent is stable", []string{"100", "105"}, model.TrendStable},
		{"falling", []string{"100", "95", "90", "85", "80", "75", "70"}, model.TrendFalling},
		{"flat", []string{"100", "101", "100"}, model.TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := New().Analyze(series(t, tt.prices...), dec("100"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stats.Trend != tt.want {
				t.Errorf("expected %s, got %s", tt.want, stats.Trend)
			}
		})
	}
}

func TestAnalyze_Ratios(t *testing.T) {
	stats, err := New().Analyze(series(t, "100", "100", "100", "100", "100", "100", "100"), dec("95"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.VsLow.Equal(dec("0.95")) {
		t.Errorf("expected current/low 0.95, got %s", stats.VsLow)
	}
	if !stats.VsMean.Equal(dec("0.95")) {
		t.Errorf("expected current/mean 0.95, got %s", stats.VsMean)
	}
}

func TestAnalyze_DegenerateSeries(t *testing.T) {
	_, err := New().Analyze(series(t, "0", "10"), dec("10"))
	if !errors.Is(err, ErrDegenerateSeries) {
		t.Fatalf("expected ErrDegenerateSeries, got %v", err)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	s := series(t, "61.30", "58.90", "55.00", "62.15", "59.40", "57.75", "60.00", "54.20")
	a := New()
	first, err := a.Analyze(s, dec("56.80"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Analyze(s, dec("56.80"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("statistics differ between identical runs:\n%+v\n%+v", first, second)
	}
}

package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
	"RailSentinel/internal/optimizer"
	"RailSentinel/internal/scraper"
	"RailSentinel/internal/store"
	"RailSentinel/internal/watchlist"
)

// memStore is an in-memory store.Store for tests.
type memStore struct {
	routes []model.TrainRoute
	prices map[string][]model.PriceObservation
}

func newMemStore() *memStore {
	return &memStore{prices: make(map[string][]model.PriceObservation)}
}

func (m *memStore) SaveRoute(r *model.TrainRoute) error {
	m.routes = append(m.routes, *r)
	return nil
}

func (m *memStore) RecordObservation(obs *model.PriceObservation) error {
	m.prices[obs.RouteKey] = append(m.prices[obs.RouteKey], *obs)
	return nil
}

func (m *memStore) PriceSeries(routeKey string) ([]model.PriceObservation, error) {
	return m.prices[routeKey], nil
}

func (m *memStore) RouteStatistics(_ string) (*store.RouteStatistics, error) { return nil, nil }
func (m *memStore) Close() error                                            { return nil }

func mustWatchlist(t *testing.T) *watchlist.Manager {
	t.Helper()
	m, err := watchlist.NewManager(t.TempDir() + "/watchlist.json")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func testLogger() zerolog.Logger { return zerolog.Nop() }

func TestCheapestOffer(t *testing.T) {
	offers := []scraper.TripOffer{
		{Route: model.TrainRoute{TrainType: model.TrainAVE}, Price: decimal.RequireFromString("72.10")},
		{Route: model.TrainRoute{TrainType: model.TrainAvlo}, Price: decimal.RequireFromString("24.90")},
		{Route: model.TrainRoute{TrainType: model.TrainAVE}, Price: decimal.RequireFromString("59.95")},
	}

	best, ok := cheapestOffer(offers, model.TrainAVE)
	if !ok {
		t.Fatal("expected a matching offer")
	}
	if !best.Price.Equal(decimal.RequireFromString("59.95")) {
		t.Errorf("expected cheapest AVE 59.95, got %s", best.Price)
	}

	best, ok = cheapestOffer(offers, "")
	if !ok || !best.Price.Equal(decimal.RequireFromString("24.90")) {
		t.Errorf("untyped tracking should pick the overall cheapest, got %s", best.Price)
	}

	if _, ok := cheapestOffer(offers, model.TrainRegional); ok {
		t.Error("expected no match for untracked train type")
	}
}

func TestCheckEntry_RecordsObservation(t *testing.T) {
	st := newMemStore()
	tr := NewTracker(context.Background(), &scraper.MockFetcher{}, st, mustWatchlist(t), optimizer.New(), nil, testLogger())

	entry := watchlist.Entry{
		OriginCode:      "MADRI",
		DestinationCode: "BARCE",
		TravelDate:      time.Now().AddDate(0, 0, 30),
		TrainType:       model.TrainAVE,
	}
	if err := tr.checkEntry(entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	series := st.prices[entry.Key()]
	if len(series) != 1 {
		t.Fatalf("expected 1 recorded observation, got %d", len(series))
	}
	if !series[0].Price.Equal(decimal.RequireFromString("62.70")) {
		t.Errorf("expected recorded price 62.70, got %s", series[0].Price)
	}
	if len(st.routes) != 1 {
		t.Errorf("expected route to be saved, got %d", len(st.routes))
	}
}

func TestCheckEntry_NotifiableResultWithoutNotifier(t *testing.T) {
	st := newMemStore()
	entry := watchlist.Entry{
		OriginCode:      "MADRI",
		DestinationCode: "BARCE",
		TravelDate:      time.Now().AddDate(0, 0, 30),
		TrainType:       model.TrainAVE,
	}

	// A week of history at the mock fare makes the next check a BUY_NOW,
	// which reaches the notification path.
	base := time.Now().AddDate(0, 0, -7).UTC()
	for i := 0; i < 7; i++ {
		st.prices[entry.Key()] = append(st.prices[entry.Key()], model.PriceObservation{
			RouteKey:   entry.Key(),
			Price:      decimal.RequireFromString("62.70"),
			Currency:   "EUR",
			ObservedAt: base.AddDate(0, 0, i),
		})
	}

	tr := NewTracker(context.Background(), &scraper.MockFetcher{}, st, mustWatchlist(t), optimizer.New(), nil, testLogger())
	if err := tr.checkEntry(entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(st.prices[entry.Key()]); got != 8 {
		t.Errorf("expected the new observation appended, got %d points", got)
	}
}

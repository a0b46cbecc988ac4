package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"RailSentinel/internal/model"
	"RailSentinel/internal/notifier"
	"RailSentinel/internal/optimizer"
	"RailSentinel/internal/scraper"
	"RailSentinel/internal/store"
	"RailSentinel/internal/watchlist"
)

// Tracker periodically scrapes every watched route, records the observed
// prices and pushes noteworthy recommendations to Telegram.
type Tracker struct {
	Cron      *cron.Cron
	Fetcher   scraper.Fetcher
	Store     store.Store
	Watchlist *watchlist.Manager
	Optimizer *optimizer.Optimizer
	Notifier  *notifier.TelegramNotifier
	Log       zerolog.Logger
	Ctx       context.Context
}

// NewTracker creates a Tracker.
func NewTracker(ctx context.Context, f scraper.Fetcher, st store.Store, wl *watchlist.Manager, opt *optimizer.Optimizer, tn *notifier.TelegramNotifier, log zerolog.Logger) *Tracker {
	return &Tracker{
		Cron:      cron.New(cron.WithSeconds()),
		Fetcher:   f,
		Store:     st,
		Watchlist: wl,
		Optimizer: opt,
		Notifier:  tn,
		Log:       log,
		Ctx:       ctx,
	}
}

// Register schedules the periodic price check.
func (t *Tracker) Register(checkCron string) error {
	if _, err := t.Cron.AddFunc(checkCron, t.checkTask); err != nil {
		return fmt.Errorf("register check task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (t *Tracker) Start() {
	t.Cron.Start()
	t.Log.Info().Msg("tracker started")
}

// Stop stops the cron scheduler gracefully.
func (t *Tracker) Stop() {
	t.Cron.Stop()
	t.Log.Info().Msg("tracker stopped")
}

// RunCheckNow executes the check immediately (manual trigger / RUN_ON_START).
func (t *Tracker) RunCheckNow() {
	t.checkTask()
}

func (t *Tracker) checkTask() {
	entries := t.Watchlist.List()
	t.Log.Info().Int("routes", len(entries)).Msg("running price check")

	for _, e := range entries {
		if err := t.checkEntry(e); err != nil {
			t.Log.Error().Err(err).Str("route", e.Key()).Msg("check failed")
		}
	}
}

func (t *Tracker) checkEntry(e watchlist.Entry) error {
	offers, err := t.Fetcher.SearchTrips(t.Ctx, e.OriginCode, e.DestinationCode, e.TravelDate)
	if err != nil {
		return fmt.Errorf("search trips: %w", err)
	}

	cheapest, ok := cheapestOffer(offers, e.TrainType)
	if !ok {
		t.Log.Warn().Str("route", e.Key()).Msg("no matching offers found")
		return nil
	}

	key := e.Key()
	days := model.DaysUntil(e.TravelDate, time.Now())

	// History first, then analysis, then the new observation; the sink is
	// fire-and-forget and must not feed back into the same analysis.
	series, err := t.Store.PriceSeries(key)
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}

	res, err := t.Optimizer.Analyze(key, cheapest.Price, series, days)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if err := t.Store.SaveRoute(&cheapest.Route); err != nil {
		t.Log.Error().Err(err).Str("route", key).Msg("save route")
	}
	obs := &model.PriceObservation{
		RouteKey:     key,
		Price:        cheapest.Price,
		Currency:     cheapest.Currency,
		TicketType:   cheapest.TicketType,
		Availability: cheapest.Availability,
		ObservedAt:   time.Now().UTC(),
	}
	if err := t.Store.RecordObservation(obs); err != nil {
		t.Log.Error().Err(err).Str("route", key).Msg("record observation")
	}

	t.Log.Info().
		Str("route", key).
		Str("price", cheapest.Price.String()).
		Str("recommendation", string(res.Recommendation)).
		Float64("confidence", res.Confidence).
		Msg("route checked")

	switch res.Recommendation {
	case model.RecommendBuyNow, model.RecommendPriceAlert:
		t.trySend(notifier.FormatResult(res))
	}
	return nil
}

// cheapestOffer picks the lowest-priced offer of the tracked train type.
// An empty tracked type accepts any service.
func cheapestOffer(offers []scraper.TripOffer, trainType model.TrainType) (scraper.TripOffer, bool) {
	var best scraper.TripOffer
	found := false
	for _, o := range offers {
		if trainType != "" && o.Route.TrainType != trainType {
			continue
		}
		if !found || o.Price.LessThan(best.Price) {
			best = o
			found = true
		}
	}
	return best, found
}

// HandleCommand processes a user command and returns a reply.
func (t *Tracker) HandleCommand(command string) string {
	switch command {
	case "/check":
		go t.RunCheckNow()
		return "Running price check for all tracked routes..."
	case "/routes":
		return notifier.FormatWatchlist(t.Watchlist.List())
	default:
		return "Available commands:\n• /check — check prices now\n• /routes — list tracked routes"
	}
}

func (t *Tracker) trySend(text string) {
	if t.Notifier == nil {
		return
	}
	if err := t.Notifier.SendWithRetry(t.Ctx, text, 3); err != nil {
		t.Log.Error().Err(err).Msg("send notification")
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"RailSentinel/internal/config"
	"RailSentinel/internal/logging"
	"RailSentinel/internal/model"
	"RailSentinel/internal/notifier"
	"RailSentinel/internal/optimizer"
	"RailSentinel/internal/scraper"
	"RailSentinel/internal/server"
	"RailSentinel/internal/store"
	"RailSentinel/internal/tracker"
	"RailSentinel/internal/watchlist"
)

const usage = `RailSentinel - train ticket price tracker and purchase-timing advisor

Usage: railsentinel <command> [flags]

Commands:
  analyze   recommendation for a route against its stored price history
  stats     price statistics for a route
  watch     add a route to the tracking watchlist
  unwatch   remove a route from the watchlist
  routes    list tracked routes
  track     run the tracking daemon (cron checks + Telegram alerts)
  serve     run the HTTP recommendation API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "unwatch":
		err = runUnwatch(os.Args[2:])
	case "routes":
		err = runRoutes(os.Args[2:])
	case "track":
		err = runTrack(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by all commands.
func setup(fs *flag.FlagSet, args []string) (*config.Config, zerolog.Logger, error) {
	cfgPath := fs.String("config", defaultConfigPath(), "path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, zerolog.Logger{}, err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	return cfg, log, nil
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// openStore prefers sqlite; when it cannot be opened the command still runs
// against a no-op store that sees no history.
func openStore(cfg *config.Config, log zerolog.Logger) store.Store {
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warn().Err(err).Msg("sqlite unavailable, continuing without persistence")
		return store.NewNoopStore()
	}
	return st
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	origin := fs.String("origin", "", "origin station code (e.g. MADRI)")
	destination := fs.String("destination", "", "destination station code (e.g. BARCE)")
	date := fs.String("date", "", "travel date (YYYY-MM-DD)")
	trainType := fs.String("type", "", "train type (AVE, AVLO, ...); empty for any")
	priceStr := fs.String("price", "", "current observed price")

	cfg, log, err := setup(fs, args)
	if err != nil {
		return err
	}
	if *origin == "" || *destination == "" || *date == "" || *priceStr == "" {
		return fmt.Errorf("origin, destination, date and price are required")
	}

	travelDate, err := time.Parse("2006-01-02", *date)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *date)
	}
	price, err := decimal.NewFromString(*priceStr)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", *priceStr, err)
	}

	st := openStore(cfg, log)
	defer st.Close()

	key := model.RouteKey(*origin, *destination, travelDate, model.TrainType(*trainType))
	series, err := st.PriceSeries(key)
	if err != nil {
		return err
	}

	days := model.DaysUntil(travelDate, time.Now())
	res, err := optimizer.New().Analyze(key, price, series, days)
	if err != nil {
		return err
	}

	printResult(res)
	return nil
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	routeKey := fs.String("route", "", "route key (ORIGIN_DEST_DATE_TYPE)")

	cfg, log, err := setup(fs, args)
	if err != nil {
		return err
	}
	if *routeKey == "" {
		return fmt.Errorf("route is required")
	}

	st := openStore(cfg, log)
	defer st.Close()

	stats, err := st.RouteStatistics(*routeKey)
	if err != nil {
		return err
	}
	if stats == nil {
		fmt.Printf("No price history for %s\n", *routeKey)
		return nil
	}

	fmt.Printf("Route:        %s\n", stats.RouteKey)
	fmt.Printf("Data points:  %d\n", stats.DataPoints)
	fmt.Printf("Lowest:       %s €\n", stats.Lowest)
	fmt.Printf("Highest:      %s €\n", stats.Highest)
	fmt.Printf("Average:      %s €\n", stats.Average.Round(2))
	fmt.Printf("Collected:    %s – %s\n",
		stats.FirstSeen.Format("2006-01-02"), stats.LastSeen.Format("2006-01-02"))
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	origin := fs.String("origin", "", "origin station code")
	destination := fs.String("destination", "", "destination station code")
	date := fs.String("date", "", "travel date (YYYY-MM-DD)")
	trainType := fs.String("type", "", "train type; empty for any")

	cfg, _, err := setup(fs, args)
	if err != nil {
		return err
	}
	if *origin == "" || *destination == "" || *date == "" {
		return fmt.Errorf("origin, destination and date are required")
	}
	travelDate, err := time.Parse("2006-01-02", *date)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *date)
	}

	wl, err := watchlist.NewManager(cfg.Watchlist.StateFile)
	if err != nil {
		return err
	}
	entry := watchlist.Entry{
		OriginCode:      *origin,
		DestinationCode: *destination,
		TravelDate:      travelDate,
		TrainType:       model.TrainType(*trainType),
	}
	if err := wl.Add(entry); err != nil {
		return err
	}
	fmt.Printf("Now tracking %s\n", entry.Key())
	return nil
}

func runUnwatch(args []string) error {
	fs := flag.NewFlagSet("unwatch", flag.ExitOnError)
	routeKey := fs.String("route", "", "route key to stop tracking")

	cfg, _, err := setup(fs, args)
	if err != nil {
		return err
	}
	if *routeKey == "" {
		return fmt.Errorf("route is required")
	}

	wl, err := watchlist.NewManager(cfg.Watchlist.StateFile)
	if err != nil {
		return err
	}
	removed, err := wl.Remove(*routeKey)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Printf("%s was not tracked\n", *routeKey)
		return nil
	}
	fmt.Printf("Stopped tracking %s\n", *routeKey)
	return nil
}

func runRoutes(args []string) error {
	fs := flag.NewFlagSet("routes", flag.ExitOnError)
	cfg, _, err := setup(fs, args)
	if err != nil {
		return err
	}
	wl, err := watchlist.NewManager(cfg.Watchlist.StateFile)
	if err != nil {
		return err
	}
	entries := wl.List()
	if len(entries) == 0 {
		fmt.Println("No routes are being tracked.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s → %s on %s (%s)\n",
			e.OriginCode, e.DestinationCode, e.TravelDate.Format("2006-01-02"), orAny(e.TrainType))
	}
	return nil
}

func runTrack(args []string) error {
	fs := flag.NewFlagSet("track", flag.ExitOnError)
	cfg, log, err := setup(fs, args)
	if err != nil {
		return err
	}
	if err := cfg.ValidateTracking(); err != nil {
		return err
	}

	st := openStore(cfg, log)
	defer st.Close()

	wl, err := watchlist.NewManager(cfg.Watchlist.StateFile)
	if err != nil {
		return err
	}

	fetcher := scraper.NewRenfeFetcher(cfg.Scraper.BaseURL, cfg.Proxy,
		time.Duration(cfg.Scraper.TimeoutSeconds)*time.Second)
	log.Info().Str("fetcher", fetcher.Name()).Msg("data source ready")

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := tracker.NewTracker(ctx, fetcher, st, wl, optimizer.New(), tn, log)
	if err := tr.Register(cfg.Schedule.CheckCron); err != nil {
		return err
	}
	tr.Start()
	defer tr.Stop()

	go tn.StartPolling(ctx, tr.HandleCommand)
	log.Info().Msg("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, checking prices now")
		go tr.RunCheckNow()
	}

	log.Info().Msg("RailSentinel tracking, press Ctrl+C to stop")
	waitForSignal()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg, log, err := setup(fs, args)
	if err != nil {
		return err
	}

	st := openStore(cfg, log)
	defer st.Close()

	srv := server.New(cfg.Server.Addr, st, optimizer.New(), log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func printResult(res *model.OptimizationResult) {
	fmt.Printf("Route:          %s\n", res.RouteKey)
	fmt.Printf("Current price:  %s €\n", res.CurrentPrice)
	fmt.Printf("Recommendation: %s (confidence %.0f%%)\n", res.Recommendation, res.Confidence*100)
	fmt.Printf("Reasoning:      %s\n", res.Reasoning)
	fmt.Printf("Action:         %s\n", res.SuggestedAction)
	fmt.Printf("Window:         %s\n", res.PurchaseWindow)
	if res.PriceTrend != "" {
		fmt.Printf("Trend:          %s\n", res.PriceTrend)
	}
	if res.HistoricalLow != nil && res.HistoricalHigh != nil {
		fmt.Printf("History:        %s € – %s €\n", res.HistoricalLow, res.HistoricalHigh)
	}
	if res.PriceVolatility != nil {
		fmt.Printf("Volatility:     %s\n", res.PriceVolatility.Round(2))
	}
	fmt.Printf("Departure in:   %d days\n", res.DaysUntilDeparture)
}

func orAny(t model.TrainType) string {
	if t == "" {
		return "any"
	}
	return string(t)
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"RailSentinel/internal/model"
)

// SQLiteStore persists price history to a SQLite database. Prices are
// stored as decimal strings so no precision is lost across a round trip.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the HTTP API can read while the tracker writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS routes (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			route_key        TEXT UNIQUE NOT NULL,
			origin_code      TEXT NOT NULL,
			origin_name      TEXT,
			destination_code TEXT NOT NULL,
			destination_name TEXT,
			train_number     TEXT,
			train_type       TEXT,
			departure_time   INTEGER,
			arrival_time     INTEGER,
			duration_minutes INTEGER,
			created_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_od ON routes(origin_code, destination_code)`,

		`CREATE TABLE IF NOT EXISTS prices (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			route_key    TEXT NOT NULL,
			price        TEXT NOT NULL,
			currency     TEXT NOT NULL DEFAULT 'EUR',
			ticket_type  TEXT,
			availability INTEGER,
			observed_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_route ON prices(route_key, observed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_observed ON prices(observed_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// SaveRoute upserts the route definition behind a route key.
func (s *SQLiteStore) SaveRoute(route *model.TrainRoute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO routes
		(route_key, origin_code, origin_name, destination_code, destination_name,
		 train_number, train_type, departure_time, arrival_time, duration_minutes, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(route_key) DO UPDATE SET
			departure_time = excluded.departure_time,
			arrival_time = excluded.arrival_time,
			duration_minutes = excluded.duration_minutes`,
		route.Key(), route.Origin.Code, route.Origin.Name,
		route.Destination.Code, route.Destination.Name,
		route.TrainNumber, string(route.TrainType),
		route.DepartureTime.Unix(), route.ArrivalTime.Unix(),
		route.DurationMinutes, time.Now().Unix(),
	)
	return err
}

// RecordObservation appends one scraped price point. Fire-and-forget from
// the caller's perspective; observations are never updated.
func (s *SQLiteStore) RecordObservation(obs *model.PriceObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO prices
		(route_key, price, currency, ticket_type, availability, observed_at)
		VALUES (?,?,?,?,?,?)`,
		obs.RouteKey, obs.Price.String(), obs.Currency,
		obs.TicketType, obs.Availability, obs.ObservedAt.Unix(),
	)
	return err
}

// PriceSeries returns the full history for a route key in chronological
// order, which is the ordering contract the analysis core relies on.
func (s *SQLiteStore) PriceSeries(routeKey string) ([]model.PriceObservation, error) {
	rows, err := s.db.Query(`SELECT price, currency, ticket_type, availability, observed_at
		FROM prices WHERE route_key = ? ORDER BY observed_at ASC, id ASC`, routeKey)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	var series []model.PriceObservation
	for rows.Next() {
		var (
			priceStr   string
			currency   string
			ticketType sql.NullString
			avail      sql.NullInt64
			observedAt int64
		)
		if err := rows.Scan(&priceStr, &currency, &ticketType, &avail, &observedAt); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt price %q for %s: %w", priceStr, routeKey, err)
		}
		series = append(series, model.PriceObservation{
			RouteKey:     routeKey,
			Price:        price,
			Currency:     currency,
			TicketType:   ticketType.String,
			Availability: int(avail.Int64),
			ObservedAt:   time.Unix(observedAt, 0).UTC(),
		})
	}
	return series, rows.Err()
}

// RouteStatistics aggregates the stored history for one route key. The
// aggregation runs in Go rather than SQL so the averages stay exact.
func (s *SQLiteStore) RouteStatistics(routeKey string) (*RouteStatistics, error) {
	series, err := s.PriceSeries(routeKey)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, nil
	}

	stats := &RouteStatistics{
		RouteKey:   routeKey,
		DataPoints: len(series),
		Lowest:     series[0].Price,
		Highest:    series[0].Price,
		FirstSeen:  series[0].ObservedAt,
		LastSeen:   series[len(series)-1].ObservedAt,
	}
	sum := decimal.Zero
	for _, obs := range series {
		if obs.Price.LessThan(stats.Lowest) {
			stats.Lowest = obs.Price
		}
		if obs.Price.GreaterThan(stats.Highest) {
			stats.Highest = obs.Price
		}
		sum = sum.Add(obs.Price)
	}
	stats.Average = sum.Div(decimal.NewFromInt(int64(len(series))))
	return stats, nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}

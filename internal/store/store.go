package store

import (
	"time"

	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
)

// RouteStatistics summarizes the collected history for one route key.
type RouteStatistics struct {
	RouteKey   string          `json:"route_key"`
	DataPoints int             `json:"total_data_points"`
	Lowest     decimal.Decimal `json:"lowest_price"`
	Highest    decimal.Decimal `json:"highest_price"`
	Average    decimal.Decimal `json:"average_price"`
	FirstSeen  time.Time       `json:"collection_start"`
	LastSeen   time.Time       `json:"collection_end"`
}

// Store persists routes and price observations and serves ordered history.
// The analysis core consumes it as a plain key-addressed append/query store;
// PriceSeries must return observations sorted ascending by observation time.
type Store interface {
	SaveRoute(route *model.TrainRoute) error
	RecordObservation(obs *model.PriceObservation) error
	PriceSeries(routeKey string) ([]model.PriceObservation, error)
	RouteStatistics(routeKey string) (*RouteStatistics, error)
	Close() error
}

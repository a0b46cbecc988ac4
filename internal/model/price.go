package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation is one scraped data point for a route. Observations are
// immutable once recorded; the analysis core only ever reads them.
//
// Prices are exact decimals. Float arithmetic on ticket prices accumulates
// rounding error across a long history, so it is banned from this codebase.
type PriceObservation struct {
	RouteKey     string          `json:"route_key"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	TicketType   string          `json:"ticket_type"`
	Availability int             `json:"availability"`
	ObservedAt   time.Time       `json:"observed_at"`
}

package scraper

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
)

// TripOffer is one purchasable fare found during a search: a concrete train
// plus its cheapest currently offered ticket.
type TripOffer struct {
	Route        model.TrainRoute
	Price        decimal.Decimal
	Currency     string
	TicketType   string
	Availability int
}

// Fetcher produces raw price observations. The analysis core treats it as
// an opaque collaborator; implementations own all network and anti-bot
// concerns.
type Fetcher interface {
	SearchTrips(ctx context.Context, originCode, destCode string, travelDate time.Time) ([]TripOffer, error)
	Name() string
}

package scraper

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Offers []TripOffer
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) SearchTrips(_ context.Context, originCode, destCode string, travelDate time.Time) ([]TripOffer, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Offers != nil {
		return m.Offers, nil
	}
	departure := time.Date(travelDate.Year(), travelDate.Month(), travelDate.Day(), 8, 30, 0, 0, time.UTC)
	arrival := departure.Add(150 * time.Minute)
	return []TripOffer{{
		Route: model.TrainRoute{
			Origin:          model.Station{Code: originCode, Name: originCode},
			Destination:     model.Station{Code: destCode, Name: destCode},
			DepartureTime:   departure,
			ArrivalTime:     arrival,
			TrainType:       model.TrainAVE,
			TrainNumber:     "03071",
			DurationMinutes: 150,
		},
		Price:        decimal.RequireFromString("62.70"),
		Currency:     "EUR",
		TicketType:   "Turista",
		Availability: 40,
	}}, nil
}

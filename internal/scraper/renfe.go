package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
)

// Desktop browser headers; the booking site rejects obvious bots.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// RenfeFetcher implements Fetcher against the Renfe search endpoint.
type RenfeFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewRenfeFetcher creates a fetcher with optional proxy support.
func NewRenfeFetcher(baseURL, proxyURL string, timeout time.Duration) *RenfeFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RenfeFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *RenfeFetcher) Name() string { return "renfe" }

// renfeTrip is the expected JSON shape of one search result entry.
type renfeTrip struct {
	TrainNumber  string `json:"trainNumber"`
	TrainType    string `json:"trainType"`
	Departure    int64  `json:"departureTimestamp"`
	Arrival      int64  `json:"arrivalTimestamp"`
	Price        string `json:"price"`
	Currency     string `json:"currency"`
	TicketType   string `json:"ticketType"`
	Availability int    `json:"availability"`
	OriginName   string `json:"originName"`
	DestName     string `json:"destinationName"`
}

// SearchTrips queries the search endpoint for all services between two
// stations on a travel date and returns their cheapest offered fares,
// sorted by departure time.
func (f *RenfeFetcher) SearchTrips(ctx context.Context, originCode, destCode string, travelDate time.Time) ([]TripOffer, error) {
	endpoint := fmt.Sprintf("%s/api/search?origin=%s&destination=%s&date=%s",
		f.BaseURL, url.QueryEscape(originCode), url.QueryEscape(destCode), travelDate.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search trips: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search trips: status %d, body: %s", resp.StatusCode, string(body))
	}

	var trips []renfeTrip
	if err := json.NewDecoder(resp.Body).Decode(&trips); err != nil {
		return nil, fmt.Errorf("decode trips: %w", err)
	}

	offers := make([]TripOffer, 0, len(trips))
	for _, t := range trips {
		price, err := decimal.NewFromString(t.Price)
		if err != nil {
			return nil, fmt.Errorf("parse price %q for train %s: %w", t.Price, t.TrainNumber, err)
		}
		departure := time.Unix(t.Departure, 0).UTC()
		arrival := time.Unix(t.Arrival, 0).UTC()
		currency := t.Currency
		if currency == "" {
			currency = "EUR"
		}
		offers = append(offers, TripOffer{
			Route: model.TrainRoute{
				Origin:          model.Station{Code: originCode, Name: t.OriginName},
				Destination:     model.Station{Code: destCode, Name: t.DestName},
				DepartureTime:   departure,
				ArrivalTime:     arrival,
				TrainType:       model.TrainType(t.TrainType),
				TrainNumber:     t.TrainNumber,
				DurationMinutes: int(arrival.Sub(departure).Minutes()),
			},
			Price:        price,
			Currency:     currency,
			TicketType:   t.TicketType,
			Availability: t.Availability,
		})
	}

	sort.Slice(offers, func(i, j int) bool {
		return offers[i].Route.DepartureTime.Before(offers[j].Route.DepartureTime)
	})
	return offers, nil
}

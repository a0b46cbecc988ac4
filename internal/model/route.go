package model

import (
	"fmt"
	"time"
)

// TrainType identifies the Renfe service class operating a route.
type TrainType string

const (
	TrainAVE       TrainType = "AVE"
	TrainAvlo      TrainType = "AVLO"
	TrainAlvia     TrainType = "ALVIA"
	TrainAltaria   TrainType = "ALTARIA"
	TrainTalgo     TrainType = "TALGO"
	TrainIntercity TrainType = "INTERCITY"
	TrainRegional  TrainType = "REGIONAL"
	TrainCercanias TrainType = "CERCANIAS"
)

// Station is a train station as identified by the booking site.
type Station struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

// TrainRoute describes one point-to-point service on a specific day.
type TrainRoute struct {
	Origin          Station   `json:"origin"`
	Destination     Station   `json:"destination"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	TrainType       TrainType `json:"train_type"`
	TrainNumber     string    `json:"train_number"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Key returns the identifier under which price history for this route is
// accumulated: origin, destination, travel date and train type.
func (r *TrainRoute) Key() string {
	return RouteKey(r.Origin.Code, r.Destination.Code, r.DepartureTime, r.TrainType)
}

// RouteKey builds a route history key from its parts.
func RouteKey(originCode, destCode string, travelDate time.Time, trainType TrainType) string {
	return fmt.Sprintf("%s_%s_%s_%s", originCode, destCode, travelDate.Format("2006-01-02"), trainType)
}

// DaysUntil counts whole calendar days from now to the travel date,
// negative once the date has passed. Clock times on either side are
// irrelevant; a departure later today is 0 days away.
func DaysUntil(travelDate, now time.Time) int {
	a := time.Date(travelDate.Year(), travelDate.Month(), travelDate.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

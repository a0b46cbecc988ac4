package store

import "RailSentinel/internal/model"

// NoopStore is the fallback when the database cannot be opened; every route
// looks like it has no history.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveRoute(_ *model.TrainRoute) error               { return nil }
func (n *NoopStore) RecordObservation(_ *model.PriceObservation) error { return nil }
func (n *NoopStore) PriceSeries(_ string) ([]model.PriceObservation, error) {
	return nil, nil
}
func (n *NoopStore) RouteStatistics(_ string) (*RouteStatistics, error) { return nil, nil }
func (n *NoopStore) Close() error                                       { return nil }

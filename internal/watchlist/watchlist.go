package watchlist

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"RailSentinel/internal/model"
)

// Entry is one route+date combination being tracked.
type Entry struct {
	OriginCode      string          `json:"origin_code"`
	DestinationCode string          `json:"destination_code"`
	TravelDate      time.Time       `json:"travel_date"`
	TrainType       model.TrainType `json:"train_type"`
	AddedAt         time.Time       `json:"added_at"`
}

// Key returns the route history key this entry tracks.
func (e *Entry) Key() string {
	return model.RouteKey(e.OriginCode, e.DestinationCode, e.TravelDate, e.TrainType)
}

// Manager holds the tracked entries with concurrency safety, persisting
// them to a JSON state file after every mutation.
type Manager struct {
	mu       sync.Mutex
	entries  []Entry
	filePath string
}

// NewManager creates a Manager, loading existing state from disk. A missing
// state file means an empty watchlist.
func NewManager(filePath string) (*Manager, error) {
	entries, err := loadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Manager{entries: entries, filePath: filePath}, nil
}

// Add appends an entry unless its route key is already tracked.
func (m *Manager) Add(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := e.Key()
	for _, existing := range m.entries {
		if existing.Key() == key {
			return fmt.Errorf("route %s is already tracked", key)
		}
	}
	if e.AddedAt.IsZero() {
		e.AddedAt = time.Now()
	}
	m.entries = append(m.entries, e)
	return m.save()
}

// Remove drops the entry with the given route key. Returns false if no
// such entry was tracked.
func (m *Manager) Remove(routeKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.Key() == routeKey {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true, m.save()
		}
	}
	return false, nil
}

// List returns a copy of the tracked entries.
func (m *Manager) List() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.filePath, data, 0o644)
}

func loadState(filePath string) ([]Entry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse watchlist state: %w", err)
	}
	return entries, nil
}

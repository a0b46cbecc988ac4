package model

import (
	"testing"
	"time"
)

func TestRouteKey(t *testing.T) {
	d := time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC)
	if got := RouteKey("MADRI", "BARCE", d, TrainAVE); got != "MADRI_BARCE_2026-04-01_AVE" {
		t.Errorf("unexpected key %s", got)
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		travel time.Time
		want   int
	}{
		{time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), 0},
		{time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC), 1},
		{time.Date(2026, 3, 24, 12, 0, 0, 0, time.UTC), 14},
		{time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), -2},
	}
	for _, tt := range tests {
		if got := DaysUntil(tt.travel, now); got != tt.want {
			t.Errorf("DaysUntil(%s): expected %d, got %d", tt.travel.Format("2006-01-02"), tt.want, got)
		}
	}
}

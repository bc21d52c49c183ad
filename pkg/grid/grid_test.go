package grid

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.January, 15, hour, minute, 0, 0, time.UTC)
}

func TestPlace(t *testing.T) {
	window := Window{StartHour: 8, EndHour: 20}

	tests := []struct {
		name       string
		start, end time.Time
		want       Box
		wantOK     bool
	}{
		{"nine to nine thirty", at(9, 0), at(9, 30), Box{Top: 60, Height: 30}, true},
		{"quarter hour floored to min height", at(9, 0), at(9, 15), Box{Top: 60, Height: 30}, true},
		{"zero duration floored", at(9, 0), at(9, 0), Box{Top: 60, Height: 30}, true},
		{"hour long", at(13, 15), at(14, 15), Box{Top: 315, Height: 60}, true},
		{"window start", at(8, 0), at(9, 0), Box{Top: 0, Height: 60}, true},
		{"before window excluded", at(7, 0), at(7, 30), Box{}, false},
		{"after window excluded", at(20, 15), at(20, 45), Box{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Place(tt.start, tt.end, window)
			if ok != tt.wantOK {
				t.Fatalf("Place() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Place() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNowMarker(t *testing.T) {
	window := Window{StartHour: 8, EndHour: 20}

	offset, visible := NowMarker(at(14, 32), window)
	if !visible || offset != 392 {
		t.Errorf("NowMarker(14:32) = %d, %v; want 392, true", offset, visible)
	}

	if _, visible := NowMarker(at(6, 0), window); visible {
		t.Error("NowMarker before window should be suppressed")
	}
	if _, visible := NowMarker(at(21, 30), window); visible {
		t.Error("NowMarker after window should be suppressed")
	}
}

func TestSameDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2026, time.January, 15, 0, 0, 0, 0, ny)

	// 02:30 UTC on the 16th is still 21:30 on the 15th in New York.
	instant := time.Date(2026, time.January, 16, 2, 30, 0, 0, time.UTC)
	if !SameDay(instant, day, ny) {
		t.Error("UTC instant on the 16th should land in the NY 15th column")
	}

	// An event crossing midnight is attributed to its start day only.
	lateStart := time.Date(2026, time.January, 16, 4, 45, 0, 0, time.UTC) // 23:45 NY on the 15th
	if !SameDay(lateStart, day, ny) {
		t.Error("23:45 start belongs to the 15th")
	}
	nextDay := time.Date(2026, time.January, 16, 0, 0, 0, 0, ny)
	if SameDay(lateStart, nextDay, ny) {
		t.Error("23:45 start must not also appear on the 16th")
	}
}

func TestClassify(t *testing.T) {
	now := at(12, 0)

	tests := []struct {
		name   string
		status Status
		start  time.Time
		want   Appearance
	}{
		{"cancelled wins over upcoming", StatusCancelled, at(15, 0), AppearanceCancelled},
		{"cancelled wins over past", StatusCancelled, at(9, 0), AppearanceCancelled},
		{"started renders past", StatusScheduled, at(11, 0), AppearancePast},
		{"starting now renders past", StatusScheduled, at(12, 0), AppearancePast},
		{"future renders upcoming", StatusScheduled, at(12, 15), AppearanceUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.status, tt.start, now); got != tt.want {
				t.Errorf("Classify(%s, %v) = %s, want %s", tt.status, tt.start, got, tt.want)
			}
		})
	}
}

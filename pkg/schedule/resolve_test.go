package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		slot Slot
		zone string
		want string // RFC3339 UTC
	}{
		{"new york winter", date(2026, time.January, 15), Slot{14, 30}, "America/New_York", "2026-01-15T19:30:00Z"},
		{"new york summer", date(2026, time.July, 15), Slot{14, 30}, "America/New_York", "2026-07-15T18:30:00Z"},
		{"tokyo crosses to previous utc day", date(2026, time.January, 15), Slot{7, 0}, "Asia/Tokyo", "2026-01-14T22:00:00Z"},
		{"utc passthrough", date(2026, time.March, 1), Slot{0, 0}, "UTC", "2026-03-01T00:00:00Z"},
		{"los angeles crosses to next utc day", date(2026, time.January, 15), Slot{23, 45}, "America/Los_Angeles", "2026-01-16T07:45:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.date, tt.slot, tt.zone)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			want, _ := time.Parse(time.RFC3339, tt.want)
			if !got.Equal(want) {
				t.Errorf("Resolve(%v, %v, %s) = %v, want %v", tt.date, tt.slot, tt.zone, got, want)
			}
		})
	}
}

func TestResolveZeroDate(t *testing.T) {
	got, err := Resolve(time.Time{}, Slot{9, 0}, "America/New_York")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Resolve with zero date = %v, want zero instant", got)
	}
}

func TestResolveInvalidZone(t *testing.T) {
	if _, err := Resolve(date(2026, time.January, 15), Slot{9, 0}, "Mars/Olympus_Mons"); err == nil {
		t.Error("Resolve with invalid zone: want error, got nil")
	}
}

func TestResolveRangeDayRollover(t *testing.T) {
	start, end, err := ResolveRange(date(2026, time.January, 15), Slot{23, 45}, "Europe/Berlin", 30)
	if err != nil {
		t.Fatalf("ResolveRange() error: %v", err)
	}
	if got := end.Sub(start); got != 30*time.Minute {
		t.Errorf("end-start = %v, want 30m", got)
	}

	// The end wall clock must be 00:15 on the next calendar day in Berlin.
	endDate, endSlot, err := Localize(end, "Europe/Berlin")
	if err != nil {
		t.Fatalf("Localize() error: %v", err)
	}
	if endSlot != (Slot{0, 15}) {
		t.Errorf("end slot = %v, want 00:15", endSlot)
	}
	if endDate.Day() != 16 {
		t.Errorf("end day = %d, want 16", endDate.Day())
	}
}

func TestResolveRangeAcrossDSTSpringForward(t *testing.T) {
	// US DST starts 2026-03-08 02:00: wall-clock 01:45 + 30min lands on
	// 02:15 which does not exist that day, so the end is derived from the
	// start instant instead. The pair must stay exactly 30 minutes apart
	// with the end strictly after the start.
	start, end, err := ResolveRange(date(2026, time.March, 8), Slot{1, 45}, "America/New_York", 30)
	if err != nil {
		t.Fatalf("ResolveRange() error: %v", err)
	}
	if got := start.UTC().Format("15:04"); got != "06:45" {
		t.Errorf("start UTC = %s, want 06:45", got)
	}
	if !end.After(start) {
		t.Fatalf("end %v not after start %v", end, start)
	}
	if got := end.Sub(start); got != 30*time.Minute {
		t.Errorf("end-start = %v, want 30m", got)
	}
	if got := end.UTC().Format("15:04"); got != "07:15" {
		t.Errorf("end UTC = %s, want 07:15", got)
	}
}

func TestResolveRangeStartInsideDSTGap(t *testing.T) {
	// A start selection inside the nonexistent 02:00-03:00 hour is
	// normalized by time.Date; whatever instant it lands on, the range
	// must stay positive.
	start, end, err := ResolveRange(date(2026, time.March, 8), Slot{2, 30}, "America/New_York", 30)
	if err != nil {
		t.Fatalf("ResolveRange() error: %v", err)
	}
	if !end.After(start) {
		t.Errorf("end %v not after start %v", end, start)
	}
}

func TestReassign(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		slot     Slot
		from, to string
		wantDay  int
		wantSlot Slot
	}{
		{"no-op is idempotent", date(2026, time.January, 15), Slot{14, 30}, "America/New_York", "America/New_York", 15, Slot{14, 30}},
		{"ny evening to tokyo next day", date(2026, time.January, 15), Slot{22, 0}, "America/New_York", "Asia/Tokyo", 16, Slot{12, 0}},
		{"tokyo morning to la previous day", date(2026, time.January, 16), Slot{9, 0}, "Asia/Tokyo", "America/Los_Angeles", 15, Slot{16, 0}},
		{"london to paris same day", date(2026, time.June, 1), Slot{9, 0}, "Europe/London", "Europe/Paris", 1, Slot{10, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDate, gotSlot, err := Reassign(tt.date, tt.slot, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Reassign() error: %v", err)
			}
			if gotDate.Day() != tt.wantDay || gotSlot != tt.wantSlot {
				t.Errorf("Reassign() = day %d slot %v, want day %d slot %v",
					gotDate.Day(), gotSlot, tt.wantDay, tt.wantSlot)
			}
		})
	}
}

func TestResolveLocalizeRoundTrip(t *testing.T) {
	for _, zone := range []string{"America/Los_Angeles", "UTC", "Asia/Kolkata", "Pacific/Auckland"} {
		for _, slot := range []Slot{{0, 0}, {9, 15}, {14, 45}, {23, 45}} {
			instant, err := Resolve(date(2026, time.May, 20), slot, zone)
			if err != nil {
				t.Fatalf("Resolve(%s): %v", zone, err)
			}
			gotDate, gotSlot, err := Localize(instant, zone)
			if err != nil {
				t.Fatalf("Localize(%s): %v", zone, err)
			}
			if gotSlot != slot || gotDate.Day() != 20 {
				t.Errorf("%s %v: round trip = day %d %v", zone, slot, gotDate.Day(), gotSlot)
			}
		}
	}
}

func TestBucketDuration(t *testing.T) {
	base := time.Date(2026, time.January, 15, 19, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		minutes time.Duration
		want    int
	}{
		{"15 min buckets to 30", 15 * time.Minute, 30},
		{"exactly 30", 30 * time.Minute, 30},
		{"45 min buckets to 60", 45 * time.Minute, 60},
		{"exactly 60", 60 * time.Minute, 60},
		{"90 min still buckets to 60", 90 * time.Minute, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BucketDuration(base, base.Add(tt.minutes)); got != tt.want {
				t.Errorf("BucketDuration(+%v) = %d, want %d", tt.minutes, got, tt.want)
			}
		})
	}
}

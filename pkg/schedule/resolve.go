package schedule

import (
	"math"
	"time"
)

// Resolve combines a calendar date and a time slot, interprets the pair as
// local wall-clock time in the named timezone, and returns the corresponding
// UTC instant with seconds and sub-seconds zeroed.
//
// A zero date returns a zero instant and no error: an unfilled date field is
// not a conversion failure, validation belongs to the form layer.
func Resolve(date time.Time, slot Slot, zoneName string) (time.Time, error) {
	if date.IsZero() {
		return time.Time{}, nil
	}
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return time.Time{}, err
	}
	wall := time.Date(date.Year(), date.Month(), date.Day(), slot.Hour, slot.Minute, 0, 0, loc)
	return wall.UTC(), nil
}

// ResolveRange resolves a start selection plus a duration in minutes to a
// (start, end) UTC instant pair. The end wall-clock moment is the start
// wall-clock moment plus the duration; time.Date normalizes the overflow, so
// 23:45 + 30 minutes lands on 00:15 of the next calendar day. Start and end
// are converted to UTC independently, which matters when the duration spans
// a DST transition.
func ResolveRange(date time.Time, slot Slot, zoneName string, minutes int) (start, end time.Time, err error) {
	if date.IsZero() {
		return time.Time{}, time.Time{}, nil
	}
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startWall := time.Date(date.Year(), date.Month(), date.Day(), slot.Hour, slot.Minute, 0, 0, loc)
	endWall := time.Date(date.Year(), date.Month(), date.Day(), slot.Hour, slot.Minute+minutes, 0, 0, loc)
	start = startWall.UTC()
	end = endWall.UTC()
	// When the end wall clock falls inside a spring-forward gap, time.Date
	// normalizes it backwards across the transition and the converted end
	// precedes the start. Fall back to instant arithmetic so the pair keeps
	// the end-after-start invariant.
	if !end.After(start) {
		end = start.Add(time.Duration(minutes) * time.Minute)
	}
	return start, end, nil
}

// Reassign recomputes a (date, slot) selection made in one timezone as the
// equivalent wall-clock selection in another, round-tripping through the
// absolute instant. Both the date and the slot may change; a no-op zone
// change returns the inputs unchanged.
func Reassign(date time.Time, slot Slot, fromZone, toZone string) (time.Time, Slot, error) {
	instant, err := Resolve(date, slot, fromZone)
	if err != nil {
		return time.Time{}, Slot{}, err
	}
	if instant.IsZero() {
		return time.Time{}, Slot{}, nil
	}
	return Localize(instant, toZone)
}

// Localize is the reverse of Resolve: it maps a UTC instant to the calendar
// date and time-of-day a user in the named timezone would see. The returned
// date is midnight of that day in the zone.
func Localize(instant time.Time, zoneName string) (time.Time, Slot, error) {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return time.Time{}, Slot{}, err
	}
	local := instant.In(loc)
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return date, Slot{Hour: local.Hour(), Minute: local.Minute()}, nil
}

// BucketDuration maps a stored start/end pair onto one of the two duration
// options the form offers: 30 minutes when the rounded duration is 30 or
// less, 60 otherwise. Lossy for durations outside {30, 60}; see
// Meeting.DurationMinutes for the exact value.
func BucketDuration(start, end time.Time) int {
	minutes := int(math.Round(end.Sub(start).Minutes()))
	if minutes <= DurationShort {
		return DurationShort
	}
	return DurationLong
}

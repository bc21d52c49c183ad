// Package grid computes day-column layout for calendar views: vertical
// placement of events within a visible hour window, the current-time marker,
// and per-event visual state. All math is in abstract units where one minute
// equals one unit; the frontend scales to pixels.
package grid

import "time"

// MinEventHeight keeps zero and near-zero duration events visible and
// clickable.
const MinEventHeight = 30

// Window is the visible hour range of a day column, e.g. {8, 20} for a
// business-hours view.
type Window struct {
	StartHour int
	EndHour   int
}

// Span returns the window height in minutes.
func (w Window) Span() int {
	return (w.EndHour - w.StartHour) * 60
}

// Box is an event's computed position in its day column.
type Box struct {
	Top    int `json:"top"`
	Height int `json:"height"`
}

// Place computes an event's box within the window from its localized start
// and end times. ok is false when the event's top falls outside [0, span];
// such events belong to a part of the day the window does not show and are
// skipped at render time, not deleted.
func Place(start, end time.Time, w Window) (Box, bool) {
	top := (start.Hour()-w.StartHour)*60 + start.Minute()
	if top < 0 || top > w.Span() {
		return Box{}, false
	}
	height := (end.Hour()-start.Hour())*60 + (end.Minute() - start.Minute())
	if height < MinEventHeight {
		height = MinEventHeight
	}
	return Box{Top: top, Height: height}, true
}

// NowMarker returns the offset of the current-time line, computed exactly
// like an event start. visible is false when now falls outside the window
// and the marker should not be drawn at all.
func NowMarker(now time.Time, w Window) (offset int, visible bool) {
	box, ok := Place(now, now, w)
	if !ok {
		return 0, false
	}
	return box.Top, true
}

// SameDay reports whether an instant belongs to a day column, by
// calendar-date equality of the instant localized to the display zone.
// An event that starts before midnight and ends after is attributed only to
// its start day's column.
func SameDay(instant time.Time, day time.Time, loc *time.Location) bool {
	local := instant.In(loc)
	return local.Year() == day.Year() && local.Month() == day.Month() && local.Day() == day.Day()
}

// Status is the stored meeting status. "Completed" is a display state
// derived from the clock, never stored.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
)

// Appearance is the visual state of an event in the calendar.
type Appearance string

const (
	AppearanceCancelled Appearance = "cancelled"
	AppearancePast      Appearance = "past"
	AppearanceUpcoming  Appearance = "upcoming"
)

// Classify picks an event's appearance: cancelled wins, then anything whose
// start is not after now renders muted, the rest renders as upcoming.
func Classify(status Status, start, now time.Time) Appearance {
	switch {
	case status == StatusCancelled:
		return AppearanceCancelled
	case !start.After(now):
		return AppearancePast
	default:
		return AppearanceUpcoming
	}
}

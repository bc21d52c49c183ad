package schedule

import "time"

// AvailableSlots returns the time slots still selectable for the candidate
// date, evaluated in the named timezone.
//
// When the candidate date is not today (calendar-date equality against "now"
// localized to the zone, not instant comparison), every slot is available.
// When it is today, only slots strictly later than the current time of day
// remain; at 23:45 or later the result is empty, and callers should present
// a "no times available" state rather than an empty picker.
func AvailableSlots(now, date time.Time, zoneName string) ([]Slot, error) {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, err
	}
	local := now.In(loc)
	if !sameCalendarDay(local, date) {
		return AllSlots(), nil
	}

	cursor := Slot{Hour: local.Hour(), Minute: local.Minute()}
	var slots []Slot
	for _, s := range AllSlots() {
		if s.After(cursor) {
			slots = append(slots, s)
		}
	}
	return slots, nil
}

func sameCalendarDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Package schedule converts between wall-clock meeting selections and UTC
// instants. ALL times in the database are stored in UTC; the functions here
// handle the conversion to/from a named timezone for form display only.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// SlotInterval is the scheduling granularity in minutes.
	SlotInterval = 15

	// SlotsPerDay is the number of selectable time slots in one day
	// (24 hours at 15-minute granularity).
	SlotsPerDay = 24 * 60 / SlotInterval
)

// Duration options offered by the meeting form, in minutes. The stored
// entity places no constraint on duration; only the form does.
const (
	DurationShort = 30
	DurationLong  = 60
)

// Slot is a wall-clock time of day at 15-minute granularity. It carries no
// date and no timezone; it is meaningful only once both are supplied.
type Slot struct {
	Hour   int
	Minute int
}

// ParseSlot parses an "HH:MM" string.
func ParseSlot(s string) (Slot, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return Slot{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return Slot{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return Slot{}, fmt.Errorf("invalid minute in %q", s)
	}
	return Slot{Hour: hour, Minute: minute}, nil
}

// String formats the slot as "HH:MM".
func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// After reports whether s is strictly later in the day than other,
// comparing hours first and minutes within the same hour.
func (s Slot) After(other Slot) bool {
	if s.Hour != other.Hour {
		return s.Hour > other.Hour
	}
	return s.Minute > other.Minute
}

// MinuteOfDay returns the slot's offset from midnight in minutes.
func (s Slot) MinuteOfDay() int {
	return s.Hour*60 + s.Minute
}

// AllSlots returns the 96 slots of a day in ascending order. The slice is
// freshly allocated on every call; callers may modify it.
func AllSlots() []Slot {
	slots := make([]Slot, 0, SlotsPerDay)
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m += SlotInterval {
			slots = append(slots, Slot{Hour: h, Minute: m})
		}
	}
	return slots
}

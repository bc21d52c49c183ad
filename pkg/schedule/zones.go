package schedule

import (
	"fmt"
	"time"
)

// Zone is one entry of the curated timezone list offered by the scheduling
// form. Name is the IANA identifier; Label is what the form displays.
type Zone struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Location loads the IANA location for the zone.
func (z Zone) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(z.Name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", z.Name, err)
	}
	return loc, nil
}

// zones is the curated list shown in the meeting form. Order matters: the
// form presents it as-is, roughly west to east.
var zones = []Zone{
	{"Pacific/Honolulu", "Hawaii"},
	{"America/Anchorage", "Alaska"},
	{"America/Los_Angeles", "Pacific Time (US & Canada)"},
	{"America/Denver", "Mountain Time (US & Canada)"},
	{"America/Phoenix", "Arizona"},
	{"America/Chicago", "Central Time (US & Canada)"},
	{"America/Mexico_City", "Mexico City"},
	{"America/New_York", "Eastern Time (US & Canada)"},
	{"America/Bogota", "Bogota"},
	{"America/Halifax", "Atlantic Time (Canada)"},
	{"America/Santiago", "Santiago"},
	{"America/Argentina/Buenos_Aires", "Buenos Aires"},
	{"America/Sao_Paulo", "Sao Paulo"},
	{"Atlantic/Azores", "Azores"},
	{"UTC", "UTC"},
	{"Europe/London", "London"},
	{"Europe/Dublin", "Dublin"},
	{"Europe/Lisbon", "Lisbon"},
	{"Europe/Paris", "Paris"},
	{"Europe/Berlin", "Berlin"},
	{"Europe/Madrid", "Madrid"},
	{"Europe/Rome", "Rome"},
	{"Europe/Warsaw", "Warsaw"},
	{"Europe/Athens", "Athens"},
	{"Europe/Helsinki", "Helsinki"},
	{"Europe/Istanbul", "Istanbul"},
	{"Europe/Moscow", "Moscow"},
	{"Africa/Cairo", "Cairo"},
	{"Africa/Johannesburg", "Johannesburg"},
	{"Asia/Dubai", "Dubai"},
	{"Asia/Karachi", "Karachi"},
	{"Asia/Kolkata", "Mumbai, New Delhi"},
	{"Asia/Bangkok", "Bangkok"},
	{"Asia/Singapore", "Singapore"},
	{"Asia/Shanghai", "Beijing, Shanghai"},
	{"Asia/Hong_Kong", "Hong Kong"},
	{"Asia/Tokyo", "Tokyo"},
	{"Asia/Seoul", "Seoul"},
	{"Australia/Sydney", "Sydney"},
	{"Pacific/Auckland", "Auckland"},
}

// Zones returns the curated timezone list in display order.
func Zones() []Zone {
	out := make([]Zone, len(zones))
	copy(out, zones)
	return out
}

// ZoneByName looks up a curated zone by its IANA name.
func ZoneByName(name string) (Zone, bool) {
	for _, z := range zones {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}

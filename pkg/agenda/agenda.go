// Package agenda renders a day's meetings as a colored terminal listing.
package agenda

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/dealdesk/dealdesk/pkg/grid"
)

// Item is one meeting line in the agenda.
type Item struct {
	Subject   string
	StartTime time.Time
	EndTime   time.Time
	JoinURL   string
	Status    grid.Status
}

// appearanceColor maps a visual state to terminal color.
func appearanceColor(a grid.Appearance) *color.Color {
	switch a {
	case grid.AppearanceCancelled:
		return color.New(color.FgRed, color.CrossedOut)
	case grid.AppearancePast:
		return color.New(color.FgHiBlack)
	default:
		return color.New(color.FgGreen)
	}
}

// Render writes the agenda for one day. Items are expected pre-sorted by
// start time; times are printed in the given zone.
func Render(w io.Writer, items []Item, day, now time.Time, zoneName string) error {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", zoneName, err)
	}

	header := color.New(color.Bold)
	header.Fprintf(w, "%s (%s)\n", day.In(loc).Format("Monday, January 2 2006"), zoneName)

	if len(items) == 0 {
		fmt.Fprintln(w, "  no meetings")
		return nil
	}

	for _, it := range items {
		c := appearanceColor(grid.Classify(it.Status, it.StartTime, now))
		start := it.StartTime.In(loc).Format("15:04")
		end := it.EndTime.In(loc).Format("15:04")
		line := fmt.Sprintf("  %s-%s  %s", start, end, it.Subject)
		if it.JoinURL != "" {
			line += "  " + it.JoinURL
		}
		c.Fprintln(w, line)
	}
	return nil
}

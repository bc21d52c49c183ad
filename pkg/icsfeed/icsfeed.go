// Package icsfeed serializes meetings as an iCalendar document so external
// calendar clients can subscribe to the CRM schedule.
package icsfeed

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dealdesk/dealdesk/pkg/grid"
	"github.com/dealdesk/dealdesk/pkg/store"
)

const prodID = "-//DealDesk//Meeting Scheduler//EN"

// Feed renders the scheduled meetings as a VCALENDAR. Cancelled meetings are
// omitted rather than emitted with STATUS:CANCELLED; subscribers only ever
// saw meetings while they were live.
func Feed(meetings []store.Meeting, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	for _, m := range meetings {
		if m.Status != grid.StatusScheduled {
			continue
		}
		ev := cal.AddEvent(m.ID.String() + "@dealdesk")
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(m.StartTime.UTC())
		ev.SetEndAt(m.EndTime.UTC())
		ev.SetSummary(m.Subject)
		if m.Description != nil && *m.Description != "" {
			ev.SetDescription(*m.Description)
		}
		if m.JoinURL != nil && *m.JoinURL != "" {
			ev.SetURL(*m.JoinURL)
		}
	}
	return cal.Serialize()
}

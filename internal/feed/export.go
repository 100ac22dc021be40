package feed

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/Tbsheff/notion-clone/internal/calendar"
)

const productID = "-//Planner//Calendar Export//EN"

// Export renders events as an ICS calendar named name. Task entries get a
// "task-" UID prefix so subscribers can tell them apart from events.
func Export(name string, events []calendar.DisplayEvent, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, ev := range events {
		uid := "event-" + ev.ID
		if ev.IsTask {
			uid = "task-" + ev.ID
		}
		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(stamp.UTC())
		ve.SetSummary(ev.Title)
		if ev.AllDay {
			ve.SetAllDayStartAt(ev.Start)
			end := ev.End
			if !end.After(ev.Start) {
				end = ev.Start.AddDate(0, 0, 1)
			}
			ve.SetAllDayEndAt(end)
		} else {
			ve.SetStartAt(ev.Start.UTC())
			ve.SetEndAt(ev.End.UTC())
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
	}
	return cal.Serialize()
}

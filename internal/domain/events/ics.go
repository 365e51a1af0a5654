package events

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
)

const icsProductID = "-//parish-calendar//occurrences//ES"

// WriteICS serializa las ocurrencias como un VCALENDAR (un VEVENT por ocurrencia).
// El UID es el id sintetizado, así que una ocurrencia reprogramada conserva su UID.
func WriteICS(w io.Writer, name string, items []Occurrence, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, o := range items {
		ev := cal.AddEvent(o.ID)
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(o.Start)
		ev.SetEndAt(o.End)
		ev.SetSummary(o.Title)
		if o.Description != "" {
			ev.SetDescription(o.Description)
		}
		if o.Location != "" {
			ev.SetLocation(o.Location)
		}
		if o.Ministry != "" {
			ev.SetProperty(ical.ComponentPropertyCategories, o.Ministry)
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

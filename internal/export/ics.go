// Package export renders a user's loaded sessions as an iCalendar feed so
// they can be subscribed to from an external calendar app.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/studyhub/sessionview/internal/domain"
)

const productID = "-//StudyHub//sessionview//EN"

type Options struct {
	// Name is shown by calendar clients as the feed title.
	Name string
	// Stamp is written as DTSTAMP on every VEVENT.
	Stamp time.Time
}

// UID is stable per session id so clients update rather than duplicate.
func UID(id int64) string {
	return fmt.Sprintf("session-%d@studyhub", id)
}

// Calendar builds the VCALENDAR for events. Times are emitted in UTC.
func Calendar(events []domain.DisplayEvent, opts Options) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetName(opts.Name)
		cal.SetXWRCalName(opts.Name)
	}

	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	for _, e := range events {
		ve := cal.AddEvent(UID(e.ID))
		ve.SetDtStampTime(stamp.UTC())
		ve.SetStartAt(e.Start.UTC())
		ve.SetEndAt(e.End.UTC())
		ve.SetSummary(e.Title)
		ve.SetDescription(describe(e))
		if e.Location != nil {
			ve.SetLocation(*e.Location)
		}
		if e.Link != nil {
			ve.SetURL(*e.Link)
		}
		if e.Type != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, strings.ToUpper(e.Type))
		}
	}
	return cal
}

func describe(e domain.DisplayEvent) string {
	var b strings.Builder
	b.WriteString(e.Description)
	line := func(label, v string) {
		if v == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(v)
	}
	line("Organizer", e.Organizer)
	line("Group", e.GroupName)
	line("Course", e.CourseName)
	if e.Link != nil {
		line("Link", *e.Link)
	}
	return b.String()
}

// Write serializes events as text/calendar to w.
func Write(w io.Writer, events []domain.DisplayEvent, opts Options) error {
	_, err := io.WriteString(w, Calendar(events, opts).Serialize())
	return err
}

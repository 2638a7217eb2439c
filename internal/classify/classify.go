// Package classify buckets display events relative to an instant. Callers
// pass a fresh now on every render; nothing here caches it.
package classify

import (
	"time"

	"github.com/studyhub/sessionview/internal/domain"
)

// Classify returns exactly one category. Both boundaries belong to ongoing.
// A malformed event (start after end) still gets a single category.
func Classify(e domain.DisplayEvent, now time.Time) domain.Category {
	switch {
	case now.Before(e.Start):
		return domain.CategoryUpcoming
	case now.After(e.End):
		return domain.CategoryPrevious
	default:
		return domain.CategoryOngoing
	}
}

type Buckets struct {
	Previous []domain.ClassifiedEvent
	Ongoing  []domain.ClassifiedEvent
	Upcoming []domain.ClassifiedEvent
}

// Annotate classifies each event, keeping input order.
func Annotate(events []domain.DisplayEvent, now time.Time) []domain.ClassifiedEvent {
	out := make([]domain.ClassifiedEvent, len(events))
	for i, e := range events {
		out[i] = domain.ClassifiedEvent{DisplayEvent: e, Category: Classify(e, now)}
	}
	return out
}

// Partition splits events into the three buckets, keeping input order in each.
func Partition(events []domain.DisplayEvent, now time.Time) Buckets {
	b := Buckets{
		Previous: []domain.ClassifiedEvent{},
		Ongoing:  []domain.ClassifiedEvent{},
		Upcoming: []domain.ClassifiedEvent{},
	}
	for _, ce := range Annotate(events, now) {
		switch ce.Category {
		case domain.CategoryPrevious:
			b.Previous = append(b.Previous, ce)
		case domain.CategoryOngoing:
			b.Ongoing = append(b.Ongoing, ce)
		default:
			b.Upcoming = append(b.Upcoming, ce)
		}
	}
	return b
}

// Package merge folds single live updates into ordered collections.
// Every function returns a new slice and leaves its input untouched.
package merge

import (
	"slices"

	"github.com/studyhub/sessionview/internal/domain"
	"github.com/studyhub/sessionview/internal/mapper"
)

// Order describes how a collection is keyed and sorted.
type Order[T any] struct {
	ID      func(T) int64
	Compare func(a, b T) int
	// Prepend places records with a new id at the front before sorting, so
	// ties with existing records resolve in favor of the newcomer.
	Prepend bool
}

var EventOrder = Order[domain.DisplayEvent]{
	ID:      func(e domain.DisplayEvent) int64 { return e.ID },
	Compare: mapper.CompareEvents,
}

var NotificationOrder = Order[domain.DisplayNotification]{
	ID:      func(n domain.DisplayNotification) int64 { return n.ID },
	Compare: mapper.CompareNotifications,
	Prepend: true,
}

// Upsert replaces the record sharing incoming's id, or inserts it, then
// restores order with a stable sort.
func Upsert[T any](coll []T, incoming T, o Order[T]) []T {
	id := o.ID(incoming)
	out := make([]T, 0, len(coll)+1)

	replaced := false
	for _, item := range coll {
		if !replaced && o.ID(item) == id {
			out = append(out, incoming)
			replaced = true
			continue
		}
		out = append(out, item)
	}
	if !replaced {
		if o.Prepend {
			out = append([]T{incoming}, out...)
		} else {
			out = append(out, incoming)
		}
	}

	slices.SortStableFunc(out, o.Compare)
	return out
}

// Remove drops the record with id, if any.
func Remove[T any](coll []T, id int64, o Order[T]) []T {
	out := make([]T, 0, len(coll))
	for _, item := range coll {
		if o.ID(item) != id {
			out = append(out, item)
		}
	}
	return out
}

// Event merges a pushed or created event. markNew sets the transient
// highlight flag; the caller clears it after the highlight window.
func Event(coll []domain.DisplayEvent, incoming domain.DisplayEvent, markNew bool) []domain.DisplayEvent {
	incoming.IsNew = markNew
	return Upsert(coll, incoming, EventOrder)
}

func Notification(coll []domain.DisplayNotification, incoming domain.DisplayNotification) []domain.DisplayNotification {
	return Upsert(coll, incoming, NotificationOrder)
}

func RemoveEvent(coll []domain.DisplayEvent, id int64) []domain.DisplayEvent {
	return Remove(coll, id, EventOrder)
}

// ClearNew resets the highlight flag on the event with id.
func ClearNew(coll []domain.DisplayEvent, id int64) []domain.DisplayEvent {
	out := slices.Clone(coll)
	for i := range out {
		if out[i].ID == id {
			out[i].IsNew = false
		}
	}
	return out
}

// MarkRead sets isRead on one notification, or on all when id is nil.
func MarkRead(coll []domain.DisplayNotification, id *int64) []domain.DisplayNotification {
	out := slices.Clone(coll)
	for i := range out {
		if id == nil || out[i].ID == *id {
			out[i].IsRead = true
		}
	}
	return out
}

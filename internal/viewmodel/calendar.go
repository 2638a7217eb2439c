package viewmodel

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/studyhub/sessionview/internal/classify"
	"github.com/studyhub/sessionview/internal/domain"
	"github.com/studyhub/sessionview/internal/downstream"
	"github.com/studyhub/sessionview/internal/logger"
	"github.com/studyhub/sessionview/internal/mapper"
	"github.com/studyhub/sessionview/internal/merge"
	"github.com/studyhub/sessionview/internal/push"
)

// CalendarView is one user's event list, scoped either to all groups
// (groupID 0) or to a single group.
type CalendarView struct {
	src   CalendarSource
	opts  Options
	loads singleflight.Group

	mu         sync.Mutex
	events     []domain.DisplayEvent
	groupID    int64
	loaded     bool
	gen        uint64
	closed     bool
	highlights map[int64]time.Time
}

func NewCalendarView(src CalendarSource, opts Options) *CalendarView {
	return &CalendarView{
		src:        src,
		opts:       opts.withDefaults(),
		highlights: make(map[int64]time.Time),
	}
}

// Load replaces the list with a fresh fetch for groupID (0 for all).
func (v *CalendarView) Load(ctx context.Context, groupID int64) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	var (
		raws []domain.RawEvent
		err  error
	)
	if groupID > 0 {
		raws, err = v.src.ListByGroup(ctx, groupID)
	} else {
		raws, err = v.src.ListAll(ctx)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrClosed
	}
	if v.gen != gen {
		return ErrDiscarded
	}
	if err != nil {
		return err
	}

	events, _ := mapper.MapEvents(raws, v.opts.Location)
	v.events = events
	v.groupID = groupID
	v.loaded = true
	for id := range v.highlights {
		if !slices.ContainsFunc(events, func(e domain.DisplayEvent) bool { return e.ID == id }) {
			delete(v.highlights, id)
		}
	}
	return nil
}

// Ensure loads when the view is empty, the scope changed, or refresh is set.
// Concurrent callers for the same scope share one fetch.
func (v *CalendarView) Ensure(ctx context.Context, groupID int64, refresh bool) error {
	v.mu.Lock()
	fresh := v.loaded && v.groupID == groupID
	v.mu.Unlock()

	if fresh && !refresh {
		return nil
	}
	return shared(ctx, &v.loads, strconv.FormatInt(groupID, 10), func(ctx context.Context) error {
		return v.Load(ctx, groupID)
	})
}

// Apply folds pushed messages into the list. Notification messages are
// ignored here.
func (v *CalendarView) Apply(msgs []push.Message, now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	for _, msg := range msgs {
		switch msg.Kind {
		case push.KindEvent:
			if msg.Event == nil {
				continue
			}
			e, err := mapper.MapEvent(*msg.Event, v.opts.Location)
			if err != nil {
				logger.Component("calendar_view").Warn().Err(err).Msg("dropping_unmappable_push")
				continue
			}
			v.insertLocked(e, now)
		case push.KindEventDeleted:
			v.events = merge.RemoveEvent(v.events, msg.DeletedID)
			delete(v.highlights, msg.DeletedID)
		}
	}
}

// insertLocked merges e highlighted and reports whether it is in scope.
func (v *CalendarView) insertLocked(e domain.DisplayEvent, now time.Time) bool {
	if v.groupID > 0 && e.GroupID != v.groupID {
		return false
	}
	v.events = merge.Event(v.events, e, true)
	v.highlights[e.ID] = now.Add(v.opts.HighlightWindow)
	return true
}

// Tick clears highlights whose window has passed.
func (v *CalendarView) Tick(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expireLocked(now)
}

func (v *CalendarView) expireLocked(now time.Time) {
	for id, until := range v.highlights {
		if !now.Before(until) {
			v.events = merge.ClearNew(v.events, id)
			delete(v.highlights, id)
		}
	}
}

// Snapshot classifies the current list against now.
func (v *CalendarView) Snapshot(now time.Time) domain.CalendarSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.expireLocked(now)
	b := classify.Partition(v.events, now)
	return domain.CalendarSnapshot{
		GeneratedAt: now,
		Events:      classify.Annotate(v.events, now),
		Previous:    b.Previous,
		Ongoing:     b.Ongoing,
		Upcoming:    b.Upcoming,
	}
}

// Events returns a copy of the current list.
func (v *CalendarView) Events() []domain.DisplayEvent {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.events)
}

// CreateSession validates the form, creates the session on the backend and
// merges the result highlighted. IsNew is set only when the session landed
// in the current scope.
func (v *CalendarView) CreateSession(ctx context.Context, ns domain.NewSession) (domain.DisplayEvent, error) {
	if err := validateStruct(ns); err != nil {
		return domain.DisplayEvent{}, err
	}
	if v.isClosed() {
		return domain.DisplayEvent{}, ErrClosed
	}

	raw, err := v.src.Create(ctx, downstream.NewCreateBody(ns))
	if err != nil {
		return domain.DisplayEvent{}, err
	}
	e, err := mapper.MapEvent(*raw, v.opts.Location)
	if err != nil {
		return domain.DisplayEvent{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return domain.DisplayEvent{}, ErrClosed
	}
	e.IsNew = v.insertLocked(e, v.opts.Now())
	return e, nil
}

// DeleteSession removes the session on the backend, then locally. A session
// the backend no longer knows is removed locally as well.
func (v *CalendarView) DeleteSession(ctx context.Context, id int64) error {
	if v.isClosed() {
		return ErrClosed
	}

	err := v.src.Delete(ctx, id)
	if err != nil && !errors.Is(err, downstream.ErrNotFound) {
		return err
	}

	v.mu.Lock()
	v.events = merge.RemoveEvent(v.events, id)
	delete(v.highlights, id)
	v.mu.Unlock()
	return err
}

func (v *CalendarView) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Close discards the state; in-flight loads resolve to ErrClosed.
func (v *CalendarView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.gen++
	v.events = nil
	clear(v.highlights)
}

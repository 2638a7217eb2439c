package viewmodel

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/studyhub/sessionview/internal/domain"
	"github.com/studyhub/sessionview/internal/mapper"
	"github.com/studyhub/sessionview/internal/merge"
	"github.com/studyhub/sessionview/internal/push"
)

// NotificationFeed is one user's notification list, newest first.
type NotificationFeed struct {
	src   NotificationSource
	opts  Options
	loads singleflight.Group

	mu     sync.Mutex
	items  []domain.DisplayNotification
	loaded bool
	gen    uint64
	closed bool
}

func NewNotificationFeed(src NotificationSource, opts Options) *NotificationFeed {
	return &NotificationFeed{src: src, opts: opts.withDefaults()}
}

func (f *NotificationFeed) Load(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	raws, err := f.src.List(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.gen != gen {
		return ErrDiscarded
	}
	if err != nil {
		return err
	}

	f.items = mapper.MapNotifications(raws, f.opts.Now(), f.opts.Location)
	f.loaded = true
	return nil
}

func (f *NotificationFeed) Ensure(ctx context.Context, refresh bool) error {
	f.mu.Lock()
	loaded := f.loaded
	f.mu.Unlock()

	if loaded && !refresh {
		return nil
	}
	return shared(ctx, &f.loads, "feed", f.Load)
}

// Apply folds pushed notifications into the feed; other kinds are ignored.
func (f *NotificationFeed) Apply(msgs []push.Message, now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	for _, msg := range msgs {
		if msg.Kind != push.KindNotification || msg.Notification == nil {
			continue
		}
		n := mapper.MapNotification(*msg.Notification, now, f.opts.Location)
		f.items = merge.Notification(f.items, n)
	}
}

func (f *NotificationFeed) MarkRead(ctx context.Context, id int64) error {
	if err := f.src.MarkRead(ctx, id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.items = merge.MarkRead(f.items, &id)
	return nil
}

func (f *NotificationFeed) MarkAllRead(ctx context.Context) error {
	if err := f.src.MarkAllRead(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.items = merge.MarkRead(f.items, nil)
	return nil
}

// Snapshot recomputes relative labels against now.
func (f *NotificationFeed) Snapshot(now time.Time) domain.NotificationSnapshot {
	f.mu.Lock()
	items := slices.Clone(f.items)
	f.mu.Unlock()

	if items == nil {
		items = []domain.DisplayNotification{}
	}
	mapper.RefreshTimeAgo(items, now)

	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}
	return domain.NotificationSnapshot{GeneratedAt: now, Unread: unread, Items: items}
}

func (f *NotificationFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.gen++
	f.items = nil
}

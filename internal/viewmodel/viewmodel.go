// Package viewmodel holds the per-user calendar and notification state the
// UI renders. Each view is guarded by its own mutex; loads are tagged with a
// generation so a result that arrives after Close or a newer load is dropped.
package viewmodel

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/studyhub/sessionview/internal/domain"
)

var (
	// ErrDiscarded is returned when a load finished after a load for a
	// different scope replaced it.
	ErrDiscarded = errors.New("load superseded")
	ErrClosed    = errors.New("view closed")
)

type CalendarSource interface {
	ListAll(ctx context.Context) ([]domain.RawEvent, error)
	ListByGroup(ctx context.Context, groupID int64) ([]domain.RawEvent, error)
	Create(ctx context.Context, body domain.CreateEventBody) (*domain.RawEvent, error)
	Delete(ctx context.Context, id int64) error
}

type NotificationSource interface {
	List(ctx context.Context) ([]domain.RawNotification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
}

type Options struct {
	Location        *time.Location
	HighlightWindow time.Duration
	Now             func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.HighlightWindow <= 0 {
		o.HighlightWindow = 4 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// shared runs load once per key among concurrent callers. The load itself is
// detached from any one caller's cancellation; each caller still returns when
// its own ctx is done.
func shared(ctx context.Context, g *singleflight.Group, key string, load func(context.Context) error) error {
	ch := g.DoChan(key, func() (any, error) {
		return nil, load(context.WithoutCancel(ctx))
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

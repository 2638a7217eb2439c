package viewmodel

import (
	"context"
	"sync"
	"time"

	"github.com/studyhub/sessionview/internal/logger"
	"github.com/studyhub/sessionview/internal/push"
)

type HubConfig struct {
	Calendar      CalendarSource
	Notifications NotificationSource
	Subscriber    push.Subscriber
	Options       Options
	InboxSize     int
	IdleTTL       time.Duration
}

// UserViews groups a user's views with the inbox feeding them.
type UserViews struct {
	Calendar *CalendarView
	Feed     *NotificationFeed

	inbox  *push.Inbox
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	lastUsed time.Time
}

// Sync drains pending push messages into both views and expires highlights.
func (u *UserViews) Sync(now time.Time) {
	if msgs := u.inbox.Drain(); len(msgs) > 0 {
		u.Calendar.Apply(msgs, now)
		u.Feed.Apply(msgs, now)
	}
	u.Calendar.Tick(now)
}

func (u *UserViews) touch(now time.Time) {
	u.mu.Lock()
	u.lastUsed = now
	u.mu.Unlock()
}

func (u *UserViews) idleSince(now time.Time) time.Duration {
	u.mu.Lock()
	defer u.mu.Unlock()
	return now.Sub(u.lastUsed)
}

func (u *UserViews) close() {
	u.cancel()
	u.Calendar.Close()
	u.Feed.Close()
}

// Hub owns every user's views. Views are created on first use and torn down
// by Drop, by idling past IdleTTL, or by Close.
type Hub struct {
	cfg HubConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	users map[string]*UserViews
}

func NewHub(cfg HubConfig) *Hub {
	cfg.Options = cfg.Options.withDefaults()
	if cfg.Subscriber == nil {
		cfg.Subscriber = push.Nop{}
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		users:  make(map[string]*UserViews),
	}
}

// Views returns userID's views, creating and subscribing them on first use.
// Pending push messages are applied before returning.
func (h *Hub) Views(userID string) *UserViews {
	now := h.cfg.Options.Now()

	h.mu.Lock()
	u, ok := h.users[userID]
	if !ok {
		ctx, cancel := context.WithCancel(h.ctx)
		u = &UserViews{
			Calendar: NewCalendarView(h.cfg.Calendar, h.cfg.Options),
			Feed:     NewNotificationFeed(h.cfg.Notifications, h.cfg.Options),
			inbox:    push.NewInbox(userID, h.cfg.InboxSize),
			ctx:      ctx,
			cancel:   cancel,
		}
		h.users[userID] = u
		viewsActive.Inc()
	}
	h.mu.Unlock()

	if !ok {
		if err := h.cfg.Subscriber.Subscribe(u.ctx, userID, u.inbox); err != nil {
			logger.Component("hub").Warn().Err(err).
				Str("user_id", userID).
				Msg("push subscription failed; serving without live updates")
		}
	}

	u.touch(now)
	u.Sync(now)
	return u
}

// Drop tears down userID's views and push subscription.
func (h *Hub) Drop(userID string) bool {
	h.mu.Lock()
	u, ok := h.users[userID]
	if ok {
		delete(h.users, userID)
		viewsActive.Dec()
	}
	h.mu.Unlock()

	if ok {
		u.close()
	}
	return ok
}

// Tick syncs every user's views and evicts those idle past IdleTTL.
func (h *Hub) Tick(now time.Time) {
	h.mu.Lock()
	var idle []*UserViews
	active := make([]*UserViews, 0, len(h.users))
	for id, u := range h.users {
		if u.idleSince(now) > h.cfg.IdleTTL {
			delete(h.users, id)
			viewsActive.Dec()
			viewsEvicted.Inc()
			idle = append(idle, u)
			continue
		}
		active = append(active, u)
	}
	h.mu.Unlock()

	for _, u := range idle {
		u.close()
	}
	for _, u := range active {
		u.Sync(now)
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users)
}

// Close tears down every view and the push subscriber.
func (h *Hub) Close() error {
	h.mu.Lock()
	users := h.users
	h.users = make(map[string]*UserViews)
	h.mu.Unlock()

	for _, u := range users {
		u.close()
		viewsActive.Dec()
	}
	h.cancel()
	return h.cfg.Subscriber.Close()
}

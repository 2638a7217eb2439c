package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

type NotificationHandler struct {
	views Views
	now   func() time.Time
}

func NewNotificationHandler(views Views, now func() time.Time) *NotificationHandler {
	if now == nil {
		now = time.Now
	}
	return &NotificationHandler{views: views, now: now}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	u := h.views.Views(currentSession(r).UserID)
	if err := u.Feed.Ensure(r.Context(), refreshRequested(r)); err != nil {
		handleError(w, r, err, "failed to load notifications")
		return
	}
	render.JSON(w, r, u.Feed.Snapshot(h.now()))
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		sendError(w, r, "validation_failed", "invalid notification id", http.StatusBadRequest)
		return
	}

	u := h.views.Views(currentSession(r).UserID)
	if err := u.Feed.Ensure(r.Context(), false); err != nil {
		handleError(w, r, err, "failed to load notifications")
		return
	}
	if err := u.Feed.MarkRead(r.Context(), id); err != nil {
		handleError(w, r, err, "failed to mark notification read")
		return
	}
	render.JSON(w, r, u.Feed.Snapshot(h.now()))
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	u := h.views.Views(currentSession(r).UserID)
	if err := u.Feed.Ensure(r.Context(), false); err != nil {
		handleError(w, r, err, "failed to load notifications")
		return
	}
	if err := u.Feed.MarkAllRead(r.Context()); err != nil {
		handleError(w, r, err, "failed to mark notifications read")
		return
	}
	render.JSON(w, r, u.Feed.Snapshot(h.now()))
}

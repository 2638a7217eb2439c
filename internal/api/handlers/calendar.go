package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"github.com/studyhub/sessionview/internal/domain"
	"github.com/studyhub/sessionview/internal/export"
	"github.com/studyhub/sessionview/internal/logger"
)

type CalendarHandler struct {
	views Views
	now   func() time.Time
}

func NewCalendarHandler(views Views, now func() time.Time) *CalendarHandler {
	if now == nil {
		now = time.Now
	}
	return &CalendarHandler{views: views, now: now}
}

func groupParam(r *http.Request) (int64, error) {
	v := r.URL.Query().Get("groupId")
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid groupId %q", v)
	}
	return id, nil
}

// View returns the classified calendar, loading it on first use or when the
// scope or refresh flag asks for it.
func (h *CalendarHandler) View(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupParam(r)
	if err != nil {
		sendError(w, r, "validation_failed", err.Error(), http.StatusBadRequest)
		return
	}

	u := h.views.Views(currentSession(r).UserID)
	if err := u.Calendar.Ensure(r.Context(), groupID, refreshRequested(r)); err != nil {
		handleError(w, r, err, "failed to load calendar")
		return
	}

	render.JSON(w, r, u.Calendar.Snapshot(h.now()))
}

func (h *CalendarHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var ns domain.NewSession
	if err := render.DecodeJSON(r.Body, &ns); err != nil {
		sendError(w, r, "invalid_body", "request body must be a session object", http.StatusBadRequest)
		return
	}

	u := h.views.Views(currentSession(r).UserID)
	created, err := u.Calendar.CreateSession(r.Context(), ns)
	if err != nil {
		handleError(w, r, err, "failed to create session")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

func (h *CalendarHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		sendError(w, r, "validation_failed", "invalid session id", http.StatusBadRequest)
		return
	}

	u := h.views.Views(currentSession(r).UserID)
	if err := u.Calendar.DeleteSession(r.Context(), id); err != nil {
		handleError(w, r, err, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportICS serves the loaded sessions as an iCalendar file.
func (h *CalendarHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	groupID, err := groupParam(r)
	if err != nil {
		sendError(w, r, "validation_failed", err.Error(), http.StatusBadRequest)
		return
	}

	u := h.views.Views(currentSession(r).UserID)
	if err := u.Calendar.Ensure(r.Context(), groupID, refreshRequested(r)); err != nil {
		handleError(w, r, err, "failed to load calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sessions.ics"`)
	if err := export.Write(w, u.Calendar.Events(), export.Options{Name: "StudyHub sessions", Stamp: h.now()}); err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("ics export interrupted")
	}
}

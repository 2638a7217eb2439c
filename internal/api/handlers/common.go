package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/studyhub/sessionview/internal/domain"
	"github.com/studyhub/sessionview/internal/downstream"
	"github.com/studyhub/sessionview/internal/logger"
	"github.com/studyhub/sessionview/internal/session"
	"github.com/studyhub/sessionview/internal/viewmodel"
	"github.com/studyhub/sessionview/middleware"
)

// Views is the per-user view registry (viewmodel.Hub).
type Views interface {
	Views(userID string) *viewmodel.UserViews
	Drop(userID string) bool
}

func sendError(w http.ResponseWriter, r *http.Request, code, message string, status int) {
	sendErrorFields(w, r, code, message, status, nil)
}

func sendErrorFields(w http.ResponseWriter, r *http.Request, code, message string, status int, fields []string) {
	resp := domain.APIError{}
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.RequestID = middleware.GetRequestID(r.Context())
	resp.Error.Fields = fields

	render.Status(r, status)
	render.JSON(w, r, resp)
}

// handleError maps view, session and backend errors onto the JSON error body.
// Transport failures surface as 502/504; nothing is retried.
func handleError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	var (
		verr *viewmodel.ValidationError
		se   *downstream.StatusError
	)

	switch {
	case errors.As(err, &verr):
		sendErrorFields(w, r, "validation_failed", "invalid session", http.StatusUnprocessableEntity, verr.Fields)
	case errors.Is(err, session.ErrNoToken), errors.Is(err, session.ErrTokenInvalid):
		sendError(w, r, "unauthorized", "authentication required", http.StatusUnauthorized)
	case errors.Is(err, session.ErrTokenExpired):
		sendError(w, r, "token_expired", "session has expired", http.StatusUnauthorized)
	case errors.Is(err, downstream.ErrUnauthorized):
		sendError(w, r, "unauthorized", "backend rejected the session", http.StatusUnauthorized)
	case errors.Is(err, downstream.ErrNotFound):
		sendError(w, r, "not_found", "resource not found", http.StatusNotFound)
	case errors.Is(err, downstream.ErrTimeout):
		sendError(w, r, "downstream_timeout", defaultMsg, http.StatusGatewayTimeout)
	case errors.Is(err, downstream.ErrUnavailable):
		sendError(w, r, "downstream_unavailable", defaultMsg, http.StatusBadGateway)
	case errors.As(err, &se):
		status := se.StatusCode
		if status >= 500 {
			status = http.StatusBadGateway
		}
		sendError(w, r, se.Code, se.Message, status)
	case errors.Is(err, viewmodel.ErrDiscarded), errors.Is(err, viewmodel.ErrClosed):
		sendError(w, r, "view_superseded", "view changed during the request; retry", http.StatusConflict)
	case errors.Is(err, context.Canceled):
		logger.Ctx(r.Context()).Debug().Msg("client went away")
	default:
		logger.Ctx(r.Context()).Error().Err(err).Msg("unhandled error")
		sendError(w, r, "internal_error", defaultMsg, http.StatusInternalServerError)
	}
}

// currentSession is guaranteed by middleware.RequireSession on every
// authenticated route.
func currentSession(r *http.Request) *session.Session {
	s, _ := session.FromContext(r.Context())
	return s
}

func int64Param(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func refreshRequested(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

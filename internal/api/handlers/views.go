package handlers

import "net/http"

type ViewsHandler struct {
	views Views
}

func NewViewsHandler(views Views) *ViewsHandler {
	return &ViewsHandler{views: views}
}

// Drop tears down the caller's views and push subscription, e.g. on logout.
func (h *ViewsHandler) Drop(w http.ResponseWriter, r *http.Request) {
	h.views.Drop(currentSession(r).UserID)
	w.WriteHeader(http.StatusNoContent)
}

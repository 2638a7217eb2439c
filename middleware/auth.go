package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/studyhub/sessionview/internal/domain"
	"github.com/studyhub/sessionview/internal/session"
)

// Authenticate resolves the bearer token into a session on the request
// context. Requests without a usable token pass through unauthenticated;
// RequireSession decides whether that is acceptable.
func Authenticate(p *session.Parser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := p.FromHeader(r.Header.Get("Authorization"))
			if err != nil {
				if !errors.Is(err, session.ErrNoToken) {
					r = r.WithContext(withAuthError(r.Context(), err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// RequireSession rejects requests that carry no valid session with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		code, msg := "unauthorized", "authentication required"
		if err := authError(r.Context()); errors.Is(err, session.ErrTokenExpired) {
			code, msg = "token_expired", "session has expired"
		} else if err != nil {
			code, msg = "token_invalid", "invalid bearer token"
		}

		var body domain.APIError
		body.Error.Code = code
		body.Error.Message = msg
		body.Error.RequestID = GetRequestID(r.Context())

		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, body)
	})
}

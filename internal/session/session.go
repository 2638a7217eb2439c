// Package session holds the caller's auth context. It is created once per
// request from the bearer token and passed explicitly on context.Context.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("token missing")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

type Session struct {
	Token     string
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// Bearer returns the Authorization header value.
func (s *Session) Bearer() string {
	return "Bearer " + s.Token
}

// Expired reports whether the token is past its exp claim. Tokens without
// exp never expire on the client side.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type accessClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Parser builds sessions from HS256 bearer tokens. The user id selects
// cached views and push routing keys, so a token is only accepted when its
// signature verifies.
type Parser struct {
	secret []byte
	now    func() time.Time
}

func NewParser(secret string) *Parser {
	p := &Parser{now: time.Now}
	if secret != "" {
		p.secret = []byte(secret)
	}
	return p
}

// WithClock overrides the time source used for expiry checks.
func (p *Parser) WithClock(now func() time.Time) *Parser {
	p.now = now
	return p
}

// FromHeader parses an "Authorization: Bearer <token>" value.
func (p *Parser) FromHeader(header string) (*Session, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, ErrNoToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, ErrTokenInvalid
	}
	return p.Parse(parts[1])
}

func (p *Parser) Parse(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	if p.secret == nil {
		return nil, ErrTokenInvalid
	}

	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	s := &Session{Token: token, UserID: claims.UserID, Role: claims.Role}
	if s.UserID == "" {
		s.UserID = claims.Subject
	}
	if !ValidUserID(s.UserID) {
		return nil, ErrTokenInvalid
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	if s.Expired(p.now()) {
		return nil, ErrTokenExpired
	}
	return s, nil
}

// ValidUserID reports whether id is safe to use as a view key and inside
// AMQP routing keys or Redis channel patterns: 1-64 characters from
// [A-Za-z0-9_-].
func ValidUserID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// Require returns the context session if it is present and unexpired.
// Data operations call it before touching the network.
func Require(ctx context.Context, now time.Time) (*Session, error) {
	s, ok := FromContext(ctx)
	if !ok || s.Token == "" {
		return nil, ErrNoToken
	}
	if s.Expired(now) {
		return nil, ErrTokenExpired
	}
	return s, nil
}

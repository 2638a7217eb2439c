package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestParser_Verified(t *testing.T) {
	p := NewParser("s3cret").WithClock(func() time.Time { return now })

	t.Run("valid_token", func(t *testing.T) {
		tok := sign(t, "s3cret", jwt.MapClaims{"uid": "u-1", "role": "student", "exp": now.Add(time.Hour).Unix()})
		s, err := p.FromHeader("Bearer " + tok)
		require.NoError(t, err)
		assert.Equal(t, "u-1", s.UserID)
		assert.Equal(t, "student", s.Role)
		assert.Equal(t, "Bearer "+tok, s.Bearer())
	})

	t.Run("falls_back_to_sub", func(t *testing.T) {
		tok := sign(t, "s3cret", jwt.MapClaims{"sub": "42"})
		s, err := p.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, "42", s.UserID)
		assert.True(t, s.ExpiresAt.IsZero())
	})

	t.Run("expired", func(t *testing.T) {
		tok := sign(t, "s3cret", jwt.MapClaims{"uid": "u-1", "exp": now.Add(-time.Minute).Unix()})
		_, err := p.Parse(tok)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		tok := sign(t, "other", jwt.MapClaims{"uid": "u-1"})
		_, err := p.Parse(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("no_user", func(t *testing.T) {
		tok := sign(t, "s3cret", jwt.MapClaims{"role": "student"})
		_, err := p.Parse(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestParser_RejectsWithoutSecret(t *testing.T) {
	p := NewParser("").WithClock(func() time.Time { return now })

	tok := sign(t, "whatever-the-backend-uses", jwt.MapClaims{"uid": "u-9", "exp": now.Add(time.Hour).Unix()})
	_, err := p.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParser_RejectsUnsafeUserID(t *testing.T) {
	p := NewParser("s3cret").WithClock(func() time.Time { return now })

	for _, uid := range []string{"*", "alice.#", "user:1", "a b", strings.Repeat("x", 65)} {
		t.Run(uid, func(t *testing.T) {
			tok := sign(t, "s3cret", jwt.MapClaims{"uid": uid, "exp": now.Add(time.Hour).Unix()})
			_, err := p.Parse(tok)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestValidUserID(t *testing.T) {
	assert.True(t, ValidUserID("u-1"))
	assert.True(t, ValidUserID("550e8400-e29b-41d4-a716-446655440000"))
	assert.True(t, ValidUserID("user_42"))
	assert.False(t, ValidUserID(""))
	assert.False(t, ValidUserID("push:user:*"))
}

func TestParser_FromHeader(t *testing.T) {
	p := NewParser("")

	_, err := p.FromHeader("")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = p.FromHeader("Basic abc")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRequire(t *testing.T) {
	_, err := Require(context.Background(), now)
	assert.ErrorIs(t, err, ErrNoToken)

	ctx := WithSession(context.Background(), &Session{Token: "t", UserID: "u", ExpiresAt: now.Add(time.Minute)})
	s, err := Require(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, "u", s.UserID)

	_, err = Require(ctx, now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

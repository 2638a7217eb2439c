// Package push carries live updates from the backend's push channel to the
// per-user view models. Drivers only decode and Deliver; view state is never
// touched from a consumer goroutine.
package push

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/studyhub/sessionview/internal/domain"
)

type Kind string

const (
	KindEvent        Kind = "event"
	KindNotification Kind = "notification"
	KindEventDeleted Kind = "event_deleted"
)

var (
	ErrUnknownKind = errors.New("unknown push kind")
	ErrForeignUser = errors.New("push addressed to another user")
	ErrBadUserID   = errors.New("user id not usable as a push route")
)

// Envelope is the wire format on every driver.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	UserID  string          `json:"userId"`
	Payload json.RawMessage `json:"payload"`
}

// Message is a decoded envelope. Exactly one of Event, Notification or
// DeletedID is set, according to Kind.
type Message struct {
	Kind         Kind
	Event        *domain.RawEvent
	Notification *domain.RawNotification
	DeletedID    int64
}

// Decode parses body for userID. fallback is the kind derived from the
// routing key or channel name, used when the envelope omits it.
func Decode(body []byte, userID string, fallback Kind) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Message{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.UserID != "" && env.UserID != userID {
		return Message{}, ErrForeignUser
	}

	kind := env.Kind
	if kind == "" {
		kind = fallback
	}

	msg := Message{Kind: kind}
	switch kind {
	case KindEvent:
		var e domain.RawEvent
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return Message{}, fmt.Errorf("decode event payload: %w", err)
		}
		msg.Event = &e
	case KindNotification:
		var n domain.RawNotification
		if err := json.Unmarshal(env.Payload, &n); err != nil {
			return Message{}, fmt.Errorf("decode notification payload: %w", err)
		}
		msg.Notification = &n
	case KindEventDeleted:
		var ref struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(env.Payload, &ref); err != nil {
			return Message{}, fmt.Errorf("decode deletion payload: %w", err)
		}
		if ref.ID == 0 {
			return Message{}, errors.New("deletion without id")
		}
		msg.DeletedID = ref.ID
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return msg, nil
}

// kindFromTopic returns the segment after prefix in a routing key or channel
// name, e.g. "user.7.event" with prefix "user.7." yields "event".
func kindFromTopic(topic, prefix string) Kind {
	rest, ok := strings.CutPrefix(topic, prefix)
	if !ok {
		return ""
	}
	if i := strings.IndexAny(rest, ".:"); i >= 0 {
		rest = rest[:i]
	}
	return Kind(rest)
}

package push

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Subscriber attaches a user's inbox to the push channel. Subscribe returns
// once the subscription is established; delivery continues in the background
// until ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string, inbox *Inbox) error
	Close() error
}

// Nop is used when PUSH_DRIVER=none.
type Nop struct{}

func (Nop) Subscribe(context.Context, string, *Inbox) error { return nil }
func (Nop) Close() error                                    { return nil }

// accept decodes body and hands it to the inbox. Malformed or foreign
// messages are logged and dropped; they are never retried.
func accept(driver string, body []byte, userID string, fallback Kind, inbox *Inbox, log zerolog.Logger) {
	msg, err := Decode(body, userID, fallback)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, ErrForeignUser) {
			reason = "foreign_user"
		} else if errors.Is(err, ErrUnknownKind) {
			reason = "unknown_kind"
		}
		log.Warn().Err(err).Str("reason", reason).Msg("dropping push message")
		pushDropped.WithLabelValues(reason).Inc()
		return
	}
	if inbox.Deliver(msg) {
		pushReceived.WithLabelValues(driver, string(msg.Kind)).Inc()
	}
}

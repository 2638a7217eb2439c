package push

import "github.com/studyhub/sessionview/internal/logger"

// Inbox is a bounded mailbox between a push consumer and one user's views.
type Inbox struct {
	ch     chan Message
	userID string
}

func NewInbox(userID string, size int) *Inbox {
	if size <= 0 {
		size = 256
	}
	return &Inbox{ch: make(chan Message, size), userID: userID}
}

// Deliver enqueues msg without blocking. A full inbox drops the message.
func (i *Inbox) Deliver(msg Message) bool {
	select {
	case i.ch <- msg:
		return true
	default:
		logger.Component("push").Warn().
			Str("user_id", i.userID).
			Str("kind", string(msg.Kind)).
			Msg("inbox full; dropping push message")
		pushDropped.WithLabelValues("inbox_full").Inc()
		return false
	}
}

// Drain returns every queued message in arrival order.
func (i *Inbox) Drain() []Message {
	var out []Message
	for {
		select {
		case msg := <-i.ch:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func (i *Inbox) Len() int {
	return len(i.ch)
}

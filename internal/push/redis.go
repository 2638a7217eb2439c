package push

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/studyhub/sessionview/internal/logger"
	"github.com/studyhub/sessionview/internal/session"
)

// RedisSubscriber listens on push:user:{id}:* with a pattern subscription.
type RedisSubscriber struct {
	rdb *redis.Client
}

func NewRedisSubscriber(rdb *redis.Client) *RedisSubscriber {
	return &RedisSubscriber{rdb: rdb}
}

func channelPrefix(userID string) string {
	return "push:user:" + userID + ":"
}

func (s *RedisSubscriber) Subscribe(ctx context.Context, userID string, inbox *Inbox) error {
	if !session.ValidUserID(userID) {
		return ErrBadUserID
	}
	log := logger.Component("redis_push").With().Str("user_id", userID).Logger()

	pattern := channelPrefix(userID) + "*"
	ps := s.rdb.PSubscribe(ctx, pattern)

	// Wait for the subscription confirmation so no message published after
	// Subscribe returns can be missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("psubscribe %s: %w", pattern, err)
	}

	msgs := ps.Channel()
	go func() {
		defer func() { _ = ps.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				l := log.With().Str("channel", m.Channel).Logger()
				accept("redis", []byte(m.Payload), userID, kindFromTopic(m.Channel, channelPrefix(userID)), inbox, l)
			}
		}
	}()

	log.Info().Str("pattern", pattern).Msg("push subscription started")
	return nil
}

// Close is a no-op; the Redis client is owned by main.
func (s *RedisSubscriber) Close() error {
	return nil
}

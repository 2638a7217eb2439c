package push

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/studyhub/sessionview/internal/logger"
	"github.com/studyhub/sessionview/internal/session"
)

// AMQPSubscriber binds one exclusive queue per user to the push topic
// exchange. All users share a single connection.
type AMQPSubscriber struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewAMQPSubscriber(url, exchange string) *AMQPSubscriber {
	return &AMQPSubscriber{
		url:      strings.TrimSpace(url),
		exchange: strings.TrimSpace(exchange),
	}
}

func routingKey(userID string) string {
	return "user." + userID + ".#"
}

func (s *AMQPSubscriber) connection() (*amqp.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil && !s.conn.IsClosed() {
		return s.conn, nil
	}
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	s.conn = conn
	return conn, nil
}

func (s *AMQPSubscriber) Subscribe(ctx context.Context, userID string, inbox *Inbox) error {
	if !session.ValidUserID(userID) {
		return ErrBadUserID
	}
	log := logger.Component("amqp_push").With().Str("user_id", userID).Logger()

	conn, err := s.connection()
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(s.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return err
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return err
	}

	if err := ch.QueueBind(q.Name, routingKey(userID), s.exchange, false, nil); err != nil {
		_ = ch.Close()
		return err
	}

	if err := ch.Qos(32, 0, false); err != nil {
		_ = ch.Close()
		return err
	}

	deliveries, err := ch.Consume(q.Name, "sessionview-"+uuid.NewString(), false, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return err
	}

	go func() {
		defer func() { _ = ch.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					log.Warn().Msg("delivery channel closed")
					return
				}
				handleDelivery(d, userID, inbox)
				_ = d.Ack(false)
			}
		}
	}()

	log.Info().Str("queue", q.Name).Msg("push subscription started")
	return nil
}

// handleDelivery never fails: poison messages are dropped, not requeued.
func handleDelivery(d amqp.Delivery, userID string, inbox *Inbox) {
	log := logger.Component("amqp_push").With().
		Str("user_id", userID).
		Str("routing_key", d.RoutingKey).
		Logger()

	accept("amqp", d.Body, userID, kindFromTopic(d.RoutingKey, "user."+userID+"."), inbox, log)
}

func (s *AMQPSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.IsClosed() {
		return nil
	}
	return s.conn.Close()
}

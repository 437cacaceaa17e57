package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream. Every
// process gets its own ephemeral consumer so each one sees every event.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeListingEvents delivers new listing events to handler. Failed
// deliveries are redelivered up to three times.
func (s *Subscriber) SubscribeListingEvents(ctx context.Context, handler func(ctx context.Context, event *domain.ListingEvent) error) error {
	sub, err := s.js.Subscribe(subjectWildcard, func(msg *nats.Msg) {
		event, err := DecodeListingEvent(msg.Data)
		if err != nil {
			slog.Warn("dropping malformed listing event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// DecodeListingEvent parses a message body.
func DecodeListingEvent(data []byte) (*domain.ListingEvent, error) {
	var event domain.ListingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	switch event.Kind {
	case domain.ListingCreated, domain.ListingUpdated, domain.ListingDeleted:
	default:
		return nil, fmt.Errorf("unknown event kind %q", event.Kind)
	}
	return &event, nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

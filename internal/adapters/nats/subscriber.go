package natsadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Subscriber consumes geoengine streams.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and ensures the streams exist.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeGeolocalizeRequests delivers queued batches to handler. Batches are
// never redelivered: a failed batch is terminated, not retried.
func (s *Subscriber) SubscribeGeolocalizeRequests(ctx context.Context, handler func(ctx context.Context, ids []string) error) error {
	sub, err := s.js.Subscribe(SubjectGeolocalize, func(msg *nats.Msg) {
		ids, err := DecodeGeolocalizeRequest(msg.Data)
		if err != nil {
			slog.Warn("dropping malformed geolocalize request", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, ids); err != nil {
			slog.Error("geolocalize batch failed", "partners", len(ids), "error", err)
			_ = msg.Term()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("geolocalizer"),
		nats.ManualAck(),
		nats.MaxDeliver(1),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

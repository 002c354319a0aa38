package natsadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the geoengine streams exist.
func NewPublisher(url string) (*Publisher, error) {
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
	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:      streamLocations,
			Subjects:  []string{SubjectLocatedAll},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      streamGeolocalize,
			Subjects:  []string{SubjectGeolocalize},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist; try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// PublishPartnerLocated persists the event in JetStream; core subscribers on
// the same subject (the websocket relay) receive it too.
func (p *Publisher) PublishPartnerLocated(ctx context.Context, ev *domain.PartnerLocated) error {
	data, err := EncodeLocated(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectLocatedPrefix+ev.PartnerID, data, nats.Context(ctx))
	return err
}

// PublishGeolocalizeRequest queues a batch for the geolocalizer.
func (p *Publisher) PublishGeolocalizeRequest(ctx context.Context, ids []string) error {
	data, err := EncodeGeolocalizeRequest(ids)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectGeolocalize, data, nats.Context(ctx))
	return err
}

// Conn returns the underlying connection for readiness checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("geoengine"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

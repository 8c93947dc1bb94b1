package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/maheshrc27/linkfeed/internal/models"
	"github.com/nats-io/nats.go"
)

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NatsPublisher sends post events on a subject named after the event type.
type NatsPublisher struct {
	nc msgPublisher
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

func (p *NatsPublisher) Publish(ctx context.Context, event models.PostEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	msg := &nats.Msg{
		Subject: event.Type,
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Content-Type", "application/json")

	return p.nc.PublishMsg(msg)
}

// NoopPublisher drops every event. It stands in when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event models.PostEvent) error {
	return nil
}

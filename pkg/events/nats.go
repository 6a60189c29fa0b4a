package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes on core NATS subjects.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	opts = append([]nats.Option{nats.Name("waitlist")}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subj string, v any) error {
	if p == nil {
		return errors.New("nil publisher")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.conn.Publish(subj, data)
}

func (p *NATSPublisher) Close() error {
	if p == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

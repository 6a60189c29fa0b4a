// Package events fans ledger events out to a message broker. Every driver
// JSON encodes the payload and uses the subject as its routing key.
package events

import (
	"context"
	"fmt"

	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

const (
	DriverNone  = "none"
	DriverNATS  = "nats"
	DriverAMQP  = "amqp"
	DriverKafka = "kafka"
)

type Publisher interface {
	waitlist.Publisher
	Close() error
}

type Config struct {
	Driver       string
	NATSURL      string
	AMQPURL      string
	AMQPExchange string
	KafkaBrokers []string
	KafkaTopic   string
}

// New connects the configured driver. An empty driver means none.
func New(cfg Config) (Publisher, error) {
	switch cfg.Driver {
	case "", DriverNone:
		return Nop{}, nil
	case DriverNATS:
		p, err := NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		return p, nil
	case DriverAMQP:
		p, err := NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		return p, nil
	case DriverKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

func (Nop) Close() error { return nil }

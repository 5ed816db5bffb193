package collector

import (
	"fmt"

	"NetZoneFlow/internal/log"

	"github.com/nats-io/nats.go"
)

// Subscriber feeds batches published on a NATS subject into a Collector.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(url, subject string) (*Subscriber, error) {
	nc, err := nats.Connect(url, nats.Name("nz-collector"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	log.GetLogger().WithField("url", url).Info("connected to NATS server")
	return &Subscriber{nc: nc, subject: subject}, nil
}

// Start subscribes and merges every message into c. Undecodable messages are
// logged and dropped.
func (s *Subscriber) Start(c *Collector) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		contentType := ""
		if msg.Header != nil {
			contentType = msg.Header.Get("Content-Type")
		}
		if _, err := c.Ingest("nats", contentType, msg.Data); err != nil {
			log.GetLogger().WithError(err).Warn("dropping NATS message")
		}
	})
	if err != nil {
		return err
	}
	s.sub = sub
	log.GetLogger().WithField("subject", s.subject).Info("subscribed, waiting for batches")
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}

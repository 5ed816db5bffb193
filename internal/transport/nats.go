package transport

import (
	"context"
	"fmt"
	"time"

	"NetZoneFlow/internal/config"
	"NetZoneFlow/internal/factory"
	"NetZoneFlow/internal/log"
	"NetZoneFlow/internal/model"

	"github.com/nats-io/nats.go"
)

// Used when collector.timeout is zero; NATS cannot confirm without a bound.
const defaultNATSFlushTimeout = 10 * time.Second

func init() {
	factory.RegisterSender("nats", func(cfg config.CollectorConfig) (model.Sender, error) {
		return NewNATSSender(cfg)
	})
}

// NATSSender publishes each batch to a subject and waits for the server to
// acknowledge the flush before reporting success.
type NATSSender struct {
	nc           *nats.Conn
	subject      string
	flushTimeout time.Duration
}

// NewNATSSender connects to cfg.NATSURL.
func NewNATSSender(cfg config.CollectorConfig) (*NATSSender, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultNATSFlushTimeout
	}
	nc, err := nats.Connect(cfg.NATSURL, nats.Name("nz-client"), nats.Timeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", cfg.NATSURL, err)
	}
	log.GetLogger().WithField("url", cfg.NATSURL).Info("connected to NATS server")
	return &NATSSender{nc: nc, subject: cfg.Subject, flushTimeout: timeout}, nil
}

func (s *NATSSender) Name() string { return "nats" }

func (s *NATSSender) Send(ctx context.Context, batch *model.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: s.subject,
		Data:    batch.Body,
		Header:  nats.Header{},
	}
	msg.Header.Set("Content-Type", batch.ContentType)

	if err := s.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", s.subject, err)
	}
	return s.nc.FlushTimeout(s.flushTimeout)
}

// Close drains and closes the NATS connection.
func (s *NATSSender) Close() error {
	if s.nc == nil {
		return nil
	}
	return s.nc.Drain()
}

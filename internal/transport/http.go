// Package transport implements the senders that deliver flow batches. Each
// sender registers itself with the factory under its collector type.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"NetZoneFlow/internal/config"
	"NetZoneFlow/internal/factory"
	"NetZoneFlow/internal/model"
)

func init() {
	factory.RegisterSender("http", func(cfg config.CollectorConfig) (model.Sender, error) {
		return NewHTTPSender(cfg), nil
	})
}

// HTTPSender POSTs each batch to the collector URL. The collector accepted the
// batch iff it answered with a 2xx status; the response body is discarded.
type HTTPSender struct {
	url    string
	client *http.Client
}

// NewHTTPSender creates an HTTP sender. A zero timeout waits indefinitely.
func NewHTTPSender(cfg config.CollectorConfig) *HTTPSender {
	return &HTTPSender{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *HTTPSender) Name() string { return "http" }

func (s *HTTPSender) Send(ctx context.Context, batch *model.Batch) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(batch.Body))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", s.url, err)
	}
	req.Header.Set("Content-Type", batch.ContentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector %s answered %s", s.url, resp.Status)
	}
	return nil
}

func (s *HTTPSender) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

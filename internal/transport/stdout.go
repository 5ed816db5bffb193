package transport

import (
	"context"
	"io"
	"os"

	"NetZoneFlow/internal/config"
	"NetZoneFlow/internal/factory"
	"NetZoneFlow/internal/model"
)

func init() {
	factory.RegisterSender("stdout", func(config.CollectorConfig) (model.Sender, error) {
		return NewWriterSender(os.Stdout), nil
	})
}

// WriterSender writes each batch body followed by a newline.
type WriterSender struct {
	w io.Writer
}

func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

func (s *WriterSender) Name() string { return "stdout" }

func (s *WriterSender) Send(_ context.Context, batch *model.Batch) error {
	if _, err := s.w.Write(batch.Body); err != nil {
		return err
	}
	_, err := io.WriteString(s.w, "\n")
	return err
}

func (s *WriterSender) Close() error { return nil }

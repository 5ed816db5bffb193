// Package uploader decides when the flow store is flushed and hands the
// serialized batch to a sender.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"NetZoneFlow/internal/config"
	"NetZoneFlow/internal/engine/flowaggregator"
	"NetZoneFlow/internal/log"
	"NetZoneFlow/internal/metrics"
	"NetZoneFlow/internal/model"
)

// BatchFrames is the default number of frames a live capture accumulates; the
// flush happens on the first frame beyond it.
const BatchFrames = 100

var (
	ErrSerialize = errors.New("serialize batch")
	ErrTransfer  = errors.New("transfer batch")
)

// Policy controls what a failed transfer does. With OnFailure set to
// config.OnFailureRetry the send is repeated up to MaxRetries times, waiting
// Backoff before the first retry and doubling it each time.
type Policy struct {
	OnFailure  string
	MaxRetries int
	Backoff    time.Duration
}

// PolicyFromConfig converts the flush section of the configuration.
func PolicyFromConfig(cfg config.FlushConfig) Policy {
	return Policy{OnFailure: cfg.OnFailure, MaxRetries: cfg.MaxRetries, Backoff: cfg.Backoff}
}

// Uploader owns the frame counter. It is not safe for concurrent use; the
// pipeline drives it from its single goroutine so there is never more than
// one flush in flight.
type Uploader struct {
	sender    model.Sender
	codec     flowaggregator.Codec
	mode      model.Mode
	threshold int
	policy    Policy
	frames    int
	sleep     func(ctx context.Context, d time.Duration) error
}

type Option func(*Uploader)

// WithCodec selects the batch encoding. JSON is the default.
func WithCodec(c flowaggregator.Codec) Option {
	return func(u *Uploader) { u.codec = c }
}

// WithThreshold overrides BatchFrames. Non-positive values are ignored.
func WithThreshold(frames int) Option {
	return func(u *Uploader) {
		if frames > 0 {
			u.threshold = frames
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(u *Uploader) { u.policy = p }
}

// New creates an uploader delivering through sender.
func New(sender model.Sender, mode model.Mode, opts ...Option) *Uploader {
	u := &Uploader{
		sender:    sender,
		codec:     flowaggregator.JSONCodec{},
		mode:      mode,
		threshold: BatchFrames,
		policy:    Policy{OnFailure: config.OnFailureFatal},
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Frames returns the number of frames counted since the last successful flush.
func (u *Uploader) Frames() int {
	return u.frames
}

// Due reports whether the flush condition currently holds.
func (u *Uploader) Due() bool {
	return u.frames > u.threshold || u.mode == model.ModeReplay
}

// Tick counts one processed frame and flushes store when due. Discarded
// frames are counted too.
func (u *Uploader) Tick(ctx context.Context, store *flowaggregator.Store) error {
	u.frames++
	if !u.Due() {
		return nil
	}
	return u.Flush(ctx, store)
}

// Flush serializes store, sends it and, only if the sender accepted it,
// clears the store and resets the frame counter. On failure nothing changes.
func (u *Uploader) Flush(ctx context.Context, store *flowaggregator.Store) error {
	name := u.sender.Name()
	start := time.Now()

	batch, err := store.Serialize(u.codec)
	if err != nil {
		metrics.FlushesTotal.WithLabelValues(name, metrics.FlushSerializeFail).Inc()
		return fmt.Errorf("%w: %w", ErrSerialize, err)
	}
	batch.Frames = u.frames

	if err := u.send(ctx, batch); err != nil {
		metrics.FlushesTotal.WithLabelValues(name, metrics.FlushTransferFail).Inc()
		return fmt.Errorf("%w via %s: %w", ErrTransfer, name, err)
	}

	store.Clear()
	u.frames = 0

	metrics.FlushesTotal.WithLabelValues(name, metrics.FlushOK).Inc()
	metrics.BatchRecords.WithLabelValues(name).Observe(float64(len(batch.Records)))
	metrics.FlushLatencySeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	metrics.StoreSize.Set(0)
	log.GetLogger().WithFields(map[string]interface{}{
		"sender":  name,
		"records": len(batch.Records),
		"frames":  batch.Frames,
	}).Debug("batch delivered")
	return nil
}

func (u *Uploader) send(ctx context.Context, batch *model.Batch) error {
	err := u.sender.Send(ctx, batch)
	if err == nil || u.policy.OnFailure != config.OnFailureRetry {
		return err
	}

	backoff := u.policy.Backoff
	for attempt := 1; attempt <= u.policy.MaxRetries; attempt++ {
		log.GetLogger().WithError(err).WithField("attempt", attempt).
			Warnf("batch transfer failed, retrying in %s", backoff)
		metrics.FlushesTotal.WithLabelValues(u.sender.Name(), metrics.FlushRetried).Inc()

		if serr := u.sleep(ctx, backoff); serr != nil {
			return errors.Join(err, serr)
		}
		if err = u.sender.Send(ctx, batch); err == nil {
			return nil
		}
		backoff *= 2
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

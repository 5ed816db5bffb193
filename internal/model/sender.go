package model

import "context"

// Batch is one serialized snapshot of the flow store, ready to be delivered.
type Batch struct {
	// Records is the snapshot the body was encoded from, in store order.
	Records []FlowRecord
	// Body is the encoded representation of Records.
	Body        []byte
	ContentType string
	// Frames is the number of frames processed since the previous flush.
	Frames int
}

// Sender delivers a batch to the collector. Send blocks until the transfer
// completes or fails; a nil error means the collector accepted the batch.
type Sender interface {
	Send(ctx context.Context, batch *Batch) error
	Name() string
	Close() error
}

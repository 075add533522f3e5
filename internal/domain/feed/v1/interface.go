package feedv1

import "context"

// Reader produces the single logical stream of decoded order events the
// engine applies in arrival order.
type Reader interface {
	// ReadEvent blocks for the next event. It returns io.EOF when a finite
	// feed is exhausted.
	ReadEvent(ctx context.Context) (*Event, error)
	// SetOffset positions the reader so the next event read carries the
	// given offset.
	SetOffset(offset int64) error
	// Close releases the underlying source.
	Close() error
}

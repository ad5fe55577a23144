package stream

import "context"

// StreamConsumer reads completion requests from a transport and publishes a
// result for each of them.
type StreamConsumer interface {
	Setup(ctx context.Context) error
	// Start blocks until ctx is cancelled.
	Start(ctx context.Context) error
	Stop() error
}

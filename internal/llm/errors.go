package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrThrottled marks a provider error caused by rate limiting. It is the
	// only error class callers should retry.
	ErrThrottled = errors.New("request throttled")

	// ErrMalformedResponse is returned when the provider answered but the
	// payload has no usable content block.
	ErrMalformedResponse = errors.New("malformed model response")
)

// Throttled wraps err so that errors.Is(err, ErrThrottled) reports true while
// the original provider error stays reachable through errors.As.
func Throttled(err error) error {
	return fmt.Errorf("%w: %w", ErrThrottled, err)
}

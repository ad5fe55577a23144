// Package completion sends a prompt to an LLM and resolves to the completion
// text, retrying throttled requests with exponential backoff.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxRetries     = 5
	DefaultInitialBackoff = time.Second
	// MaxBackoff caps a single wait between attempts.
	MaxBackoff = 10 * time.Minute
)

// StatusNotifier receives human readable progress while a request waits.
type StatusNotifier interface {
	ShowStatus(text string)
}

// StatusFunc adapts a plain function to StatusNotifier.
type StatusFunc func(text string)

func (f StatusFunc) ShowStatus(text string) {
	f(text)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Requester struct {
	client         llm.LLMClient
	maxRetries     int
	initialBackoff time.Duration
	sleep          Sleeper
	logger         *zerolog.Logger
}

type Option func(*Requester)

// WithMaxRetries sets the total number of attempts. Values below 1 are ignored.
func WithMaxRetries(n int) Option {
	return func(r *Requester) {
		if n >= 1 {
			r.maxRetries = n
		}
	}
}

// WithInitialBackoff sets the wait before the second attempt. Non-positive
// values are ignored.
func WithInitialBackoff(d time.Duration) Option {
	return func(r *Requester) {
		if d > 0 {
			r.initialBackoff = d
		}
	}
}

func WithSleeper(s Sleeper) Option {
	return func(r *Requester) {
		if s != nil {
			r.sleep = s
		}
	}
}

func NewRequester(client llm.LLMClient, logger *zerolog.Logger, opts ...Option) *Requester {
	r := &Requester{
		client:         client,
		maxRetries:     DefaultMaxRetries,
		initialBackoff: DefaultInitialBackoff,
		sleep:          sleepContext,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result describes a finished request.
type Result struct {
	Text     string
	Attempts int
	Duration time.Duration
}

// Complete always resolves to text: the completion on success, otherwise a
// message starting with "Error:".
func (r *Requester) Complete(ctx context.Context, prompt string, modelID string, status StatusNotifier) string {
	result, err := r.Request(ctx, prompt, modelID, status)
	if err != nil {
		return ErrorText(err)
	}
	return result.Text
}

// Request runs the bounded retry loop. Only llm.ErrThrottled is retried; any
// other failure ends the request on the attempt that produced it.
func (r *Requester) Request(ctx context.Context, prompt string, modelID string, status StatusNotifier) (Result, error) {
	start := time.Now()
	result := Result{}

	if strings.TrimSpace(prompt) == "" {
		return result, ErrEmptyPrompt
	}
	if strings.TrimSpace(modelID) == "" {
		return result, ErrModelNotConfigured
	}

	request := llm.NewRequest(prompt, modelID)

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		result.Attempts = attempt + 1

		resp, err := r.client.InvokeModel(ctx, request)
		if err == nil && resp == nil {
			err = fmt.Errorf("%w: empty response", llm.ErrMalformedResponse)
		}
		if err == nil {
			result.Text = resp.Content
			result.Duration = time.Since(start)
			r.logger.Debug().
				Str("model_id", modelID).
				Int("attempts", result.Attempts).
				Dur("duration", result.Duration).
				Msg("completion received")
			return result, nil
		}

		if !errors.Is(err, llm.ErrThrottled) {
			result.Duration = time.Since(start)
			r.logger.Error().
				Err(err).
				Str("model_id", modelID).
				Int("attempt", result.Attempts).
				Msg("completion failed")
			return result, err
		}

		if attempt == r.maxRetries-1 {
			break
		}

		wait := r.backoff(attempt)
		r.logger.Warn().
			Err(err).
			Int("attempt", result.Attempts).
			Dur("backoff", wait).
			Msg("rate limited, retrying")
		if status != nil {
			status.ShowStatus(fmt.Sprintf("Rate limited. Retrying in %g seconds...", wait.Seconds()))
		}

		if err := r.sleep(ctx, wait); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("retry wait interrupted: %w", err)
		}
	}

	result.Duration = time.Since(start)
	r.logger.Error().
		Str("model_id", modelID).
		Int("attempts", result.Attempts).
		Msg("rate limit retries exhausted")
	return result, ErrRateLimitExceeded
}

// backoff returns initialBackoff * 2^attempt, capped at MaxBackoff.
func (r *Requester) backoff(attempt int) time.Duration {
	d := r.initialBackoff
	for i := 0; i < attempt && d < MaxBackoff; i++ {
		d *= 2
	}
	if d > MaxBackoff {
		d = MaxBackoff
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

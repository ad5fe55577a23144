// Package anthropic implements llm.LLMClient against the Anthropic Messages API.
package anthropic

import (
	"errors"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client sends single-turn requests through the official Anthropic SDK.
type Client struct {
	client  anthropic.Client
	modelID string
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	apiKey  string
	baseURL string
}

// WithAPIKey sets the API key. If not provided, ANTHROPIC_API_KEY is used.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// NewClient returns an error when no API key is available.
func NewClient(modelID string, opts ...Option) (*Client, error) {
	var cfg clientConfig
	for _, o := range opts {
		o(&cfg)
	}

	apiKey := cfg.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("anthropic: ANTHROPIC_API_KEY not set and no API key provided")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Throttling is retried by the completion requester.
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &Client{
		client:  anthropic.NewClient(clientOpts...),
		modelID: modelID,
	}, nil
}

// ModelID returns the model used when a request does not name one.
func (c *Client) ModelID() string {
	return c.modelID
}

package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm"
)

var _ llm.LLMClient = (*Client)(nil)

// InvokeModel sends the fixed single-message envelope and returns the text of
// the first content block.
func (c *Client) InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	modelID := request.ModelID
	if modelID == "" {
		modelID = c.modelID
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: int64(request.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
		Temperature: anthropic.Float(request.Temperature),
		TopP:        anthropic.Float(request.TopP),
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: completion failed: %w", classifyError(err))
	}

	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("%w: no content blocks", llm.ErrMalformedResponse)
	}
	first := msg.Content[0]
	if first.Type != "text" {
		return nil, fmt.Errorf("%w: first content block is %q", llm.ErrMalformedResponse, first.Type)
	}

	return &llm.LLMResponse{
		Content:    first.Text,
		StopReason: string(msg.StopReason),
	}, nil
}

func classifyError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return llm.Throttled(err)
	}
	return err
}

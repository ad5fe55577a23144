package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm"
)

type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Messages         []claudeMessage `json:"messages"`
	Temperature      float64         `json:"temperature"`
	TopP             float64         `json:"top_p"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeMessageResponse struct {
	Content []struct {
		Type string  `json:"type"`
		Text *string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

const throttlingErrorCode = "ThrottlingException"

func (c *Client) InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	modelID := request.ModelID
	if modelID == "" {
		modelID = c.ModelID
	}

	body, err := marshalRequest(request)
	if err != nil {
		return nil, err
	}

	output, err := c.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to invoke claude model: %w", classifyError(err))
	}

	return parseResponse(output.Body)
}

func marshalRequest(request llm.LLMRequest) ([]byte, error) {
	payload := claudeMessageRequest{
		AnthropicVersion: llm.AnthropicVersion,
		MaxTokens:        request.MaxTokens,
		Messages: []claudeMessage{
			{
				Role:    "user",
				Content: request.Prompt,
			},
		},
		Temperature: request.Temperature,
		TopP:        request.TopP,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to serialize claude request: %w", err)
	}
	return body, nil
}

func parseResponse(body []byte) (*llm.LLMResponse, error) {
	var response claudeMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %w", llm.ErrMalformedResponse, err)
	}

	if len(response.Content) == 0 {
		return nil, fmt.Errorf("%w: no content blocks", llm.ErrMalformedResponse)
	}
	if response.Content[0].Text == nil {
		return nil, fmt.Errorf("%w: first content block has no text", llm.ErrMalformedResponse)
	}

	return &llm.LLMResponse{
		Content:    *response.Content[0].Text,
		StopReason: response.StopReason,
	}, nil
}

// classifyError marks Bedrock throttling so the caller can retry it.
func classifyError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == throttlingErrorCode {
		return llm.Throttled(err)
	}
	return err
}

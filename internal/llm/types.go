package llm

// Fixed sampling parameters sent with every completion.
const (
	AnthropicVersion   = "bedrock-2023-05-31"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 1.0
	DefaultTopP        = 0.999
)

type LLMRequest struct {
	Prompt string
	// ModelID selects the model or deployment. Empty means the client default.
	ModelID     string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

type LLMResponse struct {
	Content    string
	StopReason string
}

// NewRequest builds the single-turn request envelope used by every caller.
func NewRequest(prompt string, modelID string) LLMRequest {
	return LLMRequest{
		Prompt:      prompt,
		ModelID:     modelID,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
}

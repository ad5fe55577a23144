package completion

import "errors"

// Fixed result texts returned by Complete.
const (
	EmptyPromptText        = "Error: Empty prompt. Please provide some text."
	ModelNotConfiguredText = "Error: Model ID not configured. Please set claude_model_id."
	RateLimitExceededText  = "Error: Rate limit exceeded. Please try again later."
)

var (
	ErrEmptyPrompt        = errors.New("empty prompt")
	ErrModelNotConfigured = errors.New("model id not configured")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
)

// ErrorText converts a Request error into the text returned to callers that
// cannot handle errors.
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyPrompt):
		return EmptyPromptText
	case errors.Is(err, ErrModelNotConfigured):
		return ModelNotConfiguredText
	case errors.Is(err, ErrRateLimitExceeded):
		return RateLimitExceededText
	default:
		return "Error: " + err.Error()
	}
}

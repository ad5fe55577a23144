package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/executor"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/models"
)

// CompletionInput is the MCP tool input schema (matches HTTP API field names).
type CompletionInput struct {
	RequestID string `json:"request_id,omitempty" jsonschema:"optional request identifier"`
	Prompt    string `json:"prompt" jsonschema:"text sent to the model as a single user message"`
	ModelID   string `json:"model_id,omitempty" jsonschema:"optional model or inference profile id, defaults to the server configuration"`
}

// NewCompletionHandler returns a tool handler that uses the given executor.
// Pass the returned function to mcp.AddTool.
func NewCompletionHandler(exec *executor.Executor) func(context.Context, *mcp.CallToolRequest, CompletionInput) (*mcp.CallToolResult, models.CompletionResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CompletionInput) (*mcp.CallToolResult, models.CompletionResult, error) {
		return RequestCompletion(ctx, exec, req, input)
	}
}

// RequestCompletion runs one completion. Completion failures are reported in
// the structured result and flagged with IsError, never as a protocol error.
func RequestCompletion(
	ctx context.Context,
	exec *executor.Executor,
	req *mcp.CallToolRequest,
	input CompletionInput,
) (*mcp.CallToolResult, models.CompletionResult, error) {
	result := exec.Execute(ctx, models.CompletionRequest{
		RequestID: input.RequestID,
		Prompt:    input.Prompt,
		ModelID:   input.ModelID,
	})

	return &mcp.CallToolResult{
		IsError: result.Status == models.StatusError,
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Text},
		},
	}, result, nil
}

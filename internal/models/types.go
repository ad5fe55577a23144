package models

import (
	"time"
)

// Input message

type CompletionRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Prompt    string `json:"prompt"`
	// ModelID overrides the configured model.
	ModelID string `json:"model_id,omitempty"`
}

type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Final output returned over HTTP, MCP and the result stream
type CompletionResult struct {
	RequestID string        `json:"request_id"`
	Status    Status        `json:"status"`
	Text      string        `json:"text"`
	Attempts  int           `json:"attempts"`
	Duration  time.Duration `json:"duration_ns"`
	CreatedAt time.Time     `json:"created_at"`
}

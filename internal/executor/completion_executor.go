package executor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/completion"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/models"
	"github.com/rs/zerolog"
)

//go:generate mockgen -destination=mocks/mock_requester.go -package=mocks . Requester

// Requester runs one completion with retries
type Requester interface {
	Request(ctx context.Context, prompt string, modelID string, status completion.StatusNotifier) (completion.Result, error)
}

// Executor turns transport requests into completion results. It is shared by
// the HTTP API, the MCP tool and the stream consumer.
type Executor struct {
	requester      Requester
	defaultModelID string
	logger         *zerolog.Logger
}

func NewExecutor(requester Requester, defaultModelID string, logger *zerolog.Logger) *Executor {
	return &Executor{
		requester:      requester,
		defaultModelID: defaultModelID,
		logger:         logger,
	}
}

func (e *Executor) Execute(ctx context.Context, req models.CompletionRequest) models.CompletionResult {
	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}

	modelID := strings.TrimSpace(req.ModelID)
	if modelID == "" {
		modelID = e.defaultModelID
	}

	e.logger.Info().Str("requestID", id).Str("model_id", modelID).Msg("starting completion")

	status := completion.StatusFunc(func(text string) {
		e.logger.Info().Str("requestID", id).Msg(text)
	})

	res, err := e.requester.Request(ctx, req.Prompt, modelID, status)

	result := models.CompletionResult{
		RequestID: id,
		Attempts:  res.Attempts,
		Duration:  res.Duration,
		CreatedAt: time.Now(),
	}

	if err != nil {
		result.Status = models.StatusError
		result.Text = completion.ErrorText(err)
		e.logger.Warn().Err(err).Str("requestID", id).Int("attempts", res.Attempts).Msg("completion failed")
		return result
	}

	result.Status = models.StatusOK
	result.Text = res.Text
	return result
}

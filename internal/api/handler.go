package api

import (
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/executor"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/models"
	"github.com/rs/zerolog"
)

type Handler struct {
	executor *executor.Executor
	logger   *zerolog.Logger
}

func NewHandler(executor *executor.Executor, logger *zerolog.Logger) *Handler {
	return &Handler{
		executor: executor,
		logger:   logger,
	}
}

// POST /api/v1/complete
// Body: CompletionRequest
// Returns: CompletionResult. Failures of the completion itself are reported
// in the result body, not as an HTTP error.
func (h *Handler) Complete(req *restful.Request, resp *restful.Response) {
	var completionRequest models.CompletionRequest
	if err := req.ReadEntity(&completionRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("request_id", completionRequest.RequestID).
		Int("prompt_length", len(completionRequest.Prompt)).
		Msg("Start completion")

	result := h.executor.Execute(req.Request.Context(), completionRequest)

	h.logger.Info().
		Str("request_id", result.RequestID).
		Str("status", string(result.Status)).
		Int("attempts", result.Attempts).
		Dur("duration", result.Duration).
		Msg("Completion finished")

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}

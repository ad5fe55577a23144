package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/api"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/completion"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/executor"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm/mocks"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/models"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func setupTestAPI(t *testing.T, client llm.LLMClient) *restful.Container {
	t.Helper()

	logger := zerolog.Nop()
	requester := completion.NewRequester(client, &logger,
		completion.WithMaxRetries(2),
		completion.WithInitialBackoff(time.Millisecond),
		completion.WithSleeper(func(ctx context.Context, d time.Duration) error { return nil }),
	)
	exec := executor.NewExecutor(requester, "default-model", &logger)

	container := restful.NewContainer()
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, api.NewHandler(exec, &logger))
	return container
}

func postComplete(t *testing.T, container *restful.Container, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/complete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

func TestAPI_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	container := setupTestAPI(t, mocks.NewMockLLMClient(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", recorder.Code)
	}

	var response api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response.Status)
	}
}

func TestAPI_Complete_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)
	mockClient.EXPECT().
		InvokeModel(gomock.Any(), llm.NewRequest("What is Go?", "default-model")).
		Return(&llm.LLMResponse{Content: "A programming language."}, nil)

	container := setupTestAPI(t, mockClient)

	body, _ := json.Marshal(models.CompletionRequest{RequestID: "test-001", Prompt: "What is Go?"})
	recorder := postComplete(t, container, body)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var result models.CompletionResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.RequestID != "test-001" {
		t.Errorf("Expected ID 'test-001', got '%s'", result.RequestID)
	}
	if result.Status != models.StatusOK || result.Text != "A programming language." {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestAPI_Complete_RateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)
	mockClient.EXPECT().
		InvokeModel(gomock.Any(), gomock.Any()).
		Return(nil, llm.Throttled(context.DeadlineExceeded)).
		Times(2)

	container := setupTestAPI(t, mockClient)

	body, _ := json.Marshal(models.CompletionRequest{RequestID: "test-002", Prompt: "hello", ModelID: "other-model"})
	recorder := postComplete(t, container, body)

	var result models.CompletionResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Status != models.StatusError {
		t.Errorf("Expected error status, got %s", result.Status)
	}
	if result.Text != completion.RateLimitExceededText {
		t.Errorf("Expected rate limit text, got %q", result.Text)
	}
	if result.Attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", result.Attempts)
	}
}

func TestAPI_Complete_EmptyPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	container := setupTestAPI(t, mocks.NewMockLLMClient(ctrl))

	body, _ := json.Marshal(models.CompletionRequest{Prompt: "   "})
	recorder := postComplete(t, container, body)

	var result models.CompletionResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Text != completion.EmptyPromptText {
		t.Errorf("Expected empty prompt text, got %q", result.Text)
	}
	if result.Attempts != 0 {
		t.Errorf("Expected no attempts, got %d", result.Attempts)
	}
}

func TestAPI_Complete_InvalidJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	container := setupTestAPI(t, mocks.NewMockLLMClient(ctrl))

	recorder := postComplete(t, container, []byte(`{"prompt":`))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}

	var response middleware.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse error response: %v", err)
	}
	if response.Code != http.StatusBadRequest {
		t.Errorf("Expected code 400, got %d", response.Code)
	}
}

func TestAPI_OpenAPIDocs(t *testing.T) {
	ctrl := gomock.NewController(t)
	container := setupTestAPI(t, mocks.NewMockLLMClient(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/apidocs.json", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	if !bytes.Contains(recorder.Body.Bytes(), []byte("/api/v1/complete")) {
		t.Error("Expected OpenAPI document to describe /api/v1/complete")
	}
}

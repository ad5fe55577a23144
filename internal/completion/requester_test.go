package completion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm/mocks"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

const testModel = "arn:aws:bedrock:us-east-1::foundation-model/claude"

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type recordingSleeper struct {
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

type recordingStatus struct {
	messages []string
}

func (s *recordingStatus) ShowStatus(text string) {
	s.messages = append(s.messages, text)
}

func throttlingError() error {
	return llm.Throttled(errors.New("ThrottlingException: Rate exceeded"))
}

func TestRequester_Complete(t *testing.T) {
	tests := []struct {
		name         string
		prompt       string
		modelID      string
		maxRetries   int
		responses    []func() (*llm.LLMResponse, error)
		expectText   string
		expectWaits  []time.Duration
		expectStatus int
	}{
		{
			name:       "empty prompt makes no call",
			prompt:     "",
			modelID:    testModel,
			maxRetries: 3,
			expectText: EmptyPromptText,
		},
		{
			name:       "whitespace prompt makes no call",
			prompt:     "  \n\t ",
			modelID:    testModel,
			maxRetries: 3,
			expectText: EmptyPromptText,
		},
		{
			name:       "missing model makes no call",
			prompt:     "hello",
			modelID:    "",
			maxRetries: 3,
			expectText: ModelNotConfiguredText,
		},
		{
			name:       "blank model makes no call",
			prompt:     "hello",
			modelID:    "   ",
			maxRetries: 3,
			expectText: ModelNotConfiguredText,
		},
		{
			name:       "success on first attempt",
			prompt:     "hello",
			modelID:    testModel,
			maxRetries: 3,
			responses: []func() (*llm.LLMResponse, error){
				func() (*llm.LLMResponse, error) { return &llm.LLMResponse{Content: "hi there"}, nil },
			},
			expectText: "hi there",
		},
		{
			name:       "always throttled exhausts retries",
			prompt:     "hello",
			modelID:    testModel,
			maxRetries: 3,
			responses: []func() (*llm.LLMResponse, error){
				func() (*llm.LLMResponse, error) { return nil, throttlingError() },
				func() (*llm.LLMResponse, error) { return nil, throttlingError() },
				func() (*llm.LLMResponse, error) { return nil, throttlingError() },
			},
			expectText:   RateLimitExceededText,
			expectWaits:  []time.Duration{100 * time.Millisecond, 200 * time.Millisecond},
			expectStatus: 2,
		},
		{
			name:       "throttled once then success",
			prompt:     "hello",
			modelID:    testModel,
			maxRetries: 3,
			responses: []func() (*llm.LLMResponse, error){
				func() (*llm.LLMResponse, error) { return nil, throttlingError() },
				func() (*llm.LLMResponse, error) { return &llm.LLMResponse{Content: "hello"}, nil },
			},
			expectText:   "hello",
			expectWaits:  []time.Duration{100 * time.Millisecond},
			expectStatus: 1,
		},
		{
			name:       "single attempt throttled does not wait",
			prompt:     "hello",
			modelID:    testModel,
			maxRetries: 1,
			responses: []func() (*llm.LLMResponse, error){
				func() (*llm.LLMResponse, error) { return nil, throttlingError() },
			},
			expectText: RateLimitExceededText,
		},
		{
			name:       "non throttling error stops immediately",
			prompt:     "hello",
			modelID:    testModel,
			maxRetries: 3,
			responses: []func() (*llm.LLMResponse, error){
				func() (*llm.LLMResponse, error) { return nil, errors.New("AccessDeniedException: no access to model") },
			},
			expectText: "Error: AccessDeniedException: no access to model",
		},
		{
			name:       "malformed response stops immediately",
			prompt:     "hello",
			modelID:    testModel,
			maxRetries: 3,
			responses: []func() (*llm.LLMResponse, error){
				func() (*llm.LLMResponse, error) {
					return nil, errors.Join(llm.ErrMalformedResponse, errors.New("no content blocks"))
				},
			},
			expectText: "Error: malformed model response\nno content blocks",
		},
		{
			name:       "nil response without error stops immediately",
			prompt:     "hello",
			modelID:    testModel,
			maxRetries: 3,
			responses: []func() (*llm.LLMResponse, error){
				func() (*llm.LLMResponse, error) { return nil, nil },
			},
			expectText: "Error: " + llm.ErrMalformedResponse.Error() + ": empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockClient := mocks.NewMockLLMClient(ctrl)

			expectedRequest := llm.NewRequest(tt.prompt, tt.modelID)
			var calls []any
			for _, respond := range tt.responses {
				calls = append(calls, mockClient.EXPECT().
					InvokeModel(gomock.Any(), expectedRequest).
					DoAndReturn(func(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
						return respond()
					}))
			}
			if len(calls) > 1 {
				gomock.InOrder(calls...)
			}

			sleeper := &recordingSleeper{}
			status := &recordingStatus{}
			requester := NewRequester(mockClient, testLogger(),
				WithMaxRetries(tt.maxRetries),
				WithInitialBackoff(100*time.Millisecond),
				WithSleeper(sleeper.Sleep),
			)

			text := requester.Complete(context.Background(), tt.prompt, tt.modelID, status)

			if text != tt.expectText {
				t.Errorf("expected text %q, got %q", tt.expectText, text)
			}
			if len(sleeper.waits) != len(tt.expectWaits) {
				t.Fatalf("expected %d waits, got %d (%v)", len(tt.expectWaits), len(sleeper.waits), sleeper.waits)
			}
			for i, want := range tt.expectWaits {
				if sleeper.waits[i] != want {
					t.Errorf("wait %d: expected %v, got %v", i, want, sleeper.waits[i])
				}
			}
			if len(status.messages) != tt.expectStatus {
				t.Errorf("expected %d status updates, got %d (%v)", tt.expectStatus, len(status.messages), status.messages)
			}
		})
	}
}

func TestRequester_Request_Attempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)

	mockClient.EXPECT().
		InvokeModel(gomock.Any(), gomock.Any()).
		Return(nil, throttlingError()).
		Times(3)

	sleeper := &recordingSleeper{}
	requester := NewRequester(mockClient, testLogger(),
		WithMaxRetries(3),
		WithInitialBackoff(time.Second),
		WithSleeper(sleeper.Sleep),
	)

	result, err := requester.Request(context.Background(), "hello", testModel, nil)
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("expected ErrRateLimitExceeded, got %v", err)
	}
	if result.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", result.Attempts)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(sleeper.waits) != len(want) || sleeper.waits[0] != want[0] || sleeper.waits[1] != want[1] {
		t.Errorf("expected waits %v, got %v", want, sleeper.waits)
	}
}

func TestRequester_StatusMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)

	gomock.InOrder(
		mockClient.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Return(nil, throttlingError()),
		mockClient.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Return(&llm.LLMResponse{Content: "ok"}, nil),
	)

	var messages []string
	requester := NewRequester(mockClient, testLogger(),
		WithInitialBackoff(1500*time.Millisecond),
		WithSleeper(func(ctx context.Context, d time.Duration) error { return nil }),
	)

	text := requester.Complete(context.Background(), "hello", testModel, StatusFunc(func(s string) {
		messages = append(messages, s)
	}))

	if text != "ok" {
		t.Errorf("expected 'ok', got %q", text)
	}
	if len(messages) != 1 || messages[0] != "Rate limited. Retrying in 1.5 seconds..." {
		t.Errorf("unexpected status messages: %v", messages)
	}
}

func TestRequester_CancelledDuringBackoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)

	mockClient.EXPECT().
		InvokeModel(gomock.Any(), gomock.Any()).
		Return(nil, throttlingError()).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	requester := NewRequester(mockClient, testLogger(),
		WithMaxRetries(3),
		WithInitialBackoff(time.Hour),
	)

	start := time.Now()
	text := requester.Complete(ctx, "hello", testModel, nil)

	if time.Since(start) > 5*time.Second {
		t.Error("backoff wait did not honour cancellation")
	}
	if !strings.HasPrefix(text, "Error: ") || !strings.Contains(text, context.Canceled.Error()) {
		t.Errorf("expected cancellation error text, got %q", text)
	}
}

func TestRequester_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)

	mockClient.EXPECT().
		InvokeModel(gomock.Any(), llm.NewRequest("same prompt", testModel)).
		Return(&llm.LLMResponse{Content: "same answer"}, nil).
		Times(3)

	requester := NewRequester(mockClient, testLogger())

	for i := 0; i < 3; i++ {
		if text := requester.Complete(context.Background(), "same prompt", testModel, nil); text != "same answer" {
			t.Errorf("call %d: expected 'same answer', got %q", i, text)
		}
	}
}

func TestNewRequester_IgnoresInvalidOptions(t *testing.T) {
	requester := NewRequester(nil, testLogger(),
		WithMaxRetries(0),
		WithInitialBackoff(-time.Second),
		WithSleeper(nil),
	)

	if requester.maxRetries != DefaultMaxRetries {
		t.Errorf("expected default max retries, got %d", requester.maxRetries)
	}
	if requester.initialBackoff != DefaultInitialBackoff {
		t.Errorf("expected default backoff, got %v", requester.initialBackoff)
	}
	if requester.sleep == nil {
		t.Error("expected default sleeper")
	}
}

func TestRequester_BackoffIsCapped(t *testing.T) {
	requester := NewRequester(nil, testLogger(), WithInitialBackoff(time.Second))

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{3, 8 * time.Second},
		{9, 512 * time.Second},
		{10, MaxBackoff},
		{34, MaxBackoff},
		{63, MaxBackoff},
		{200, MaxBackoff},
	}

	for _, tt := range tests {
		if got := requester.backoff(tt.attempt); got != tt.want {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.want, got)
		}
	}

	huge := NewRequester(nil, testLogger(), WithInitialBackoff(time.Duration(1<<62)))
	if got := huge.backoff(5); got != MaxBackoff {
		t.Errorf("expected large initial backoff to be capped, got %v", got)
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrEmptyPrompt, EmptyPromptText},
		{ErrModelNotConfigured, ModelNotConfiguredText},
		{ErrRateLimitExceeded, RateLimitExceededText},
		{errors.New("boom"), "Error: boom"},
	}

	for _, tt := range tests {
		if got := ErrorText(tt.err); got != tt.want {
			t.Errorf("ErrorText(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

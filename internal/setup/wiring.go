package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/povarna/generative-ai-agents/claude-assist/internal/completion"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/editor"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/executor"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm/anthropic"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/llm/gpt"
	"github.com/rs/zerolog"
)

type Config struct {
	AWSRegion       string
	ClaudeModelID   string
	AnthropicKey    string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string
	MaxRetries      int
	InitialBackoff  time.Duration
	LogLevel        string
}

type Dependencies struct {
	Requester *completion.Requester
	Assistant *editor.Assistant
	Executor  *executor.Executor
	// ModelID is the model used when a caller does not name one.
	ModelID string
	Logger  *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		AnthropicKey:    getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
		MaxRetries:      getEnvInt("MAX_RETRIES", completion.DefaultMaxRetries),
		InitialBackoff:  getEnvSeconds("INITIAL_BACKOFF_SECONDS", completion.DefaultInitialBackoff),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// ModelID is the model used when a caller does not name one. It follows the
// configured provider.
func (c *Config) ModelID() string {
	if c.DefaultProvider == "openai" {
		return c.OpenAIModelID
	}
	return c.ClaudeModelID
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.DefaultProvider, err)
	}

	return WireWithClient(llmClient, cfg, logger), nil
}

// WireWithClient builds the dependency graph around an existing LLM client.
func WireWithClient(llmClient llm.LLMClient, cfg *Config, logger *zerolog.Logger) *Dependencies {
	requester := completion.NewRequester(llmClient, logger,
		completion.WithMaxRetries(cfg.MaxRetries),
		completion.WithInitialBackoff(cfg.InitialBackoff),
	)

	logger.Info().
		Str("provider", cfg.DefaultProvider).
		Str("model_id", cfg.ModelID()).
		Int("max_retries", cfg.MaxRetries).
		Dur("initial_backoff", cfg.InitialBackoff).
		Msg("completion requester ready")

	return &Dependencies{
		Requester: requester,
		Assistant: editor.NewAssistant(requester, logger),
		Executor:  executor.NewExecutor(requester, cfg.ModelID(), logger),
		ModelID:   cfg.ModelID(),
		Logger:    logger,
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	seconds, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || seconds <= 0 {
		return defaultValue
	}

	return time.Duration(seconds * float64(time.Second))
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.LLMClient, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "anthropic":
		return anthropic.NewClient(cfg.ClaudeModelID, anthropic.WithAPIKey(cfg.AnthropicKey))
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/claude-assist/internal/executor"
	redisconn "github.com/povarna/generative-ai-agents/claude-assist/internal/redis"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/stream/redis"
	"github.com/rs/zerolog"
)

const connectAttempts = 5

// NewStreamConsumer connects to the configured transport and returns a
// consumer answering completion requests with exec.
func NewStreamConsumer(ctx context.Context, cfg *StreamConfig, exec *executor.Executor, logger *zerolog.Logger) (StreamConsumer, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderRedis
	}

	if provider != ProviderRedis {
		return nil, fmt.Errorf("unsupported stream provider: %s", provider)
	}
	if cfg.RedisConfig == nil {
		return nil, errors.New("redis stream config required")
	}

	client, err := redisconn.ConnectRedis(ctx, cfg.RedisConfig.RedisAddr, cfg.RedisConfig.RedisPassword, connectAttempts, logger)
	if err != nil {
		return nil, err
	}

	return redis.NewConsumer(client, cfg.RedisConfig, exec, logger), nil
}

package stream

import (
	"github.com/povarna/generative-ai-agents/claude-assist/internal/stream/redis"
)

const (
	ProviderRedis = "redis"

	DefaultRequestStream = "completion-requests"
	DefaultResultStream  = "completion-results"
	DefaultGroup         = "completion-group"
)

// StreamConfig selects the request/result transport. An empty Provider means
// Redis Streams.
type StreamConfig struct {
	Provider    string
	RedisConfig *redis.RedisStreamConfig
}

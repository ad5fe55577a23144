package redis

// RedisStreamConfig names the streams and consumer group used to exchange
// completion requests and results.
type RedisStreamConfig struct {
	RedisAddr     string
	RedisPassword string
	// Stream carries requests, ResultStream carries results.
	Stream       string
	ResultStream string
	Group        string
	// ConsumerName should be stable across restarts so pending requests are
	// picked up again.
	ConsumerName string
}

func NewRedisStreamConfig(addr, password, stream, resultStream, group, consumerName string) *RedisStreamConfig {
	return &RedisStreamConfig{
		RedisAddr:     addr,
		RedisPassword: password,
		Stream:        stream,
		ResultStream:  resultStream,
		Group:         group,
		ConsumerName:  consumerName,
	}
}

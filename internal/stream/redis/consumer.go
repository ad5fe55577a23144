package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/claude-assist/internal/executor"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	payloadField = "payload"
	pendingBatch = 10
)

// StreamClient is the part of *redis.Client the consumer uses.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	Close() error
}

type Consumer struct {
	client       StreamClient
	stream       string
	resultStream string
	groupID      string
	consumerName string
	executor     *executor.Executor
	logger       *zerolog.Logger

	// set when a result could not be published; the entry is still in this
	// consumer's pending list and is read again before new messages.
	retryPending bool
}

func NewConsumer(client StreamClient, cfg *RedisStreamConfig, exec *executor.Executor, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:       client,
		stream:       cfg.Stream,
		resultStream: cfg.ResultStream,
		groupID:      cfg.Group,
		consumerName: cfg.ConsumerName,
		executor:     exec,
		logger:       logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Start answers the requests left pending by an earlier run of this consumer,
// then reads new ones until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("result_stream", c.resultStream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	c.retryPending = true

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if c.retryPending {
			c.retryPending = false
			c.drainPending(ctx)
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, stream := range msgs {
			for _, msg := range stream.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *Consumer) Stop() error {
	return c.client.Close()
}

// drainPending walks this consumer's pending entries once, oldest first.
// Entries that fail again stay pending for the next pass.
func (c *Consumer) drainPending(ctx context.Context) {
	lastID := "0"
	for ctx.Err() == nil {
		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, lastID},
			Count:    pendingBatch,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				c.logger.Error().Err(err).Msg("Failed to read pending messages")
			}
			return
		}

		read := 0
		for _, stream := range msgs {
			for _, msg := range stream.Messages {
				read++
				lastID = msg.ID
				// Trimmed entries come back without values.
				if len(msg.Values) == 0 {
					c.ack(ctx, msg.ID)
					continue
				}
				c.logger.Info().Str("id", msg.ID).Msg("Replaying pending message")
				c.process(ctx, msg)
			}
		}
		if read == 0 {
			return
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	request, err := decodeRequest(msg)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.ack(ctx, msg.ID) // undecodable, ACK to skip it
		return
	}

	result := c.executor.Execute(ctx, request)

	if err := c.publish(ctx, result); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to publish result")
		c.retryPending = true
		return
	}

	c.logger.Info().
		Str("id", msg.ID).
		Str("request_id", result.RequestID).
		Str("status", string(result.Status)).
		Int("attempts", result.Attempts).
		Msg("Completion published")

	c.ack(ctx, msg.ID)
}

func (c *Consumer) publish(ctx context.Context, result models.CompletionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	return c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.resultStream,
		Values: map[string]interface{}{payloadField: string(payload)},
	}).Err()
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}

// decodeRequest reads the JSON payload field of a stream message. A message
// without a request id takes the stream entry id.
func decodeRequest(msg redis.XMessage) (models.CompletionRequest, error) {
	var request models.CompletionRequest

	payload, ok := msg.Values[payloadField].(string)
	if !ok {
		return request, fmt.Errorf("missing %s field", payloadField)
	}

	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		return request, fmt.Errorf("invalid payload: %w", err)
	}

	if request.RequestID == "" {
		request.RequestID = msg.ID
	}
	return request, nil
}

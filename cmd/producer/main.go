package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/models"
	red "github.com/povarna/generative-ai-agents/claude-assist/internal/redis"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/stream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	prompt := flag.String("p", "", "Prompt to send")
	modelID := flag.String("model", "", "Model id (defaults to the consumer configuration)")
	requestStream := flag.String("stream", stream.DefaultRequestStream, "Request stream name")
	resultStream := flag.String("results", stream.DefaultResultStream, "Result stream name")
	wait := flag.Duration("wait", 0, "Wait this long for the matching result (0 publishes only)")
	flag.Parse()

	if *prompt == "" {
		fmt.Fprintln(os.Stderr, "Usage: producer -p '<prompt>' [-model id] [-wait 2m]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	req := models.CompletionRequest{
		RequestID: uuid.NewString(),
		Prompt:    *prompt,
		ModelID:   *modelID,
	}

	if err := run(req, *requestStream, *resultStream, *wait); err != nil {
		log.Error().Err(err).Msg("producer failed")
		os.Exit(1)
	}
}

func run(req models.CompletionRequest, requestStream, resultStream string, wait time.Duration) error {
	_ = godotenv.Load()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx := context.Background()
	client, err := red.ConnectRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), 3, &log.Logger)
	if err != nil {
		return err
	}
	defer client.Close()

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	// Results published after this point are candidates for our reply.
	start := fmt.Sprintf("%d-0", time.Now().UnixMilli())

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: requestStream,
		Values: map[string]any{"payload": string(payload)},
	}).Result()
	if err != nil {
		return err
	}

	log.Info().Str("stream", requestStream).Str("id", id).Str("request_id", req.RequestID).Msg("Published successfully!")

	if wait <= 0 {
		return nil
	}

	result, err := awaitResult(ctx, client, resultStream, start, req.RequestID, wait)
	if err != nil {
		return err
	}

	fmt.Println(result.Text)
	return nil
}

func awaitResult(ctx context.Context, client *redis.Client, resultStream, lastID, requestID string, wait time.Duration) (models.CompletionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	for {
		streams, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{resultStream, lastID},
			Count:   10,
			Block:   2 * time.Second,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return models.CompletionResult{}, fmt.Errorf("no result for %s within %s", requestID, wait)
			}
			return models.CompletionResult{}, err
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				lastID = msg.ID
				payload, ok := msg.Values["payload"].(string)
				if !ok {
					continue
				}
				var result models.CompletionResult
				if err := json.Unmarshal([]byte(payload), &result); err != nil {
					continue
				}
				if result.RequestID == requestID {
					return result, nil
				}
			}
		}

		if ctx.Err() != nil {
			return models.CompletionResult{}, fmt.Errorf("no result for %s within %s", requestID, wait)
		}
	}
}

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/mcpadapter"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	serverName    = "claude-assist"
	serverVersion = "1.0.0"
)

func main() {
	// Stdout belongs to the MCP transport, so logs go to stderr.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.Wire(ctx, setup.LoadConfig(), &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}

	server := newCompletionServer(deps)

	logger.Info().Str("default_model", deps.ModelID).Msg("Serving request_completion over stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		if isClientGone(err) {
			logger.Debug().Err(err).Msg("MCP client disconnected")
			return
		}
		logger.Error().Err(err).Msg("MCP server failed")
		os.Exit(1)
	}
}

func newCompletionServer(deps *setup.Dependencies) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "request_completion",
		Description: "Send a prompt to the configured model as a single user message and return its answer. Throttled requests are retried with exponential backoff.",
	}, mcpadapter.NewCompletionHandler(deps.Executor))

	return server
}

// isClientGone reports errors caused by the client closing stdin.
func isClientGone(err error) bool {
	return errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing")
}

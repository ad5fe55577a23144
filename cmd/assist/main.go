package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/completion"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/editor"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/setup"
	"github.com/povarna/generative-ai-agents/claude-assist/internal/setup/logger"
)

const (
	formatText    = "text"
	formatCommand = "command"
)

func main() {
	buffer := flag.String("buffer", "", "Buffer file to assist on")
	line := flag.Int("line", 0, "1-based cursor line in the buffer (0 means the last line)")
	settings := flag.String("settings", "configs/settings.yaml", "Editor settings YAML file")
	clearBuffer := flag.Bool("clear", false, "Clear the buffer instead of requesting a completion")
	format := flag.String("format", formatText, "One-shot output format: text or command")
	prompt := flag.String("prompt", "", "One-shot prompt, printed response goes to stdout")
	stdin := flag.Bool("stdin", false, "Read a one-shot prompt from stdin")
	flag.Parse()

	_ = godotenv.Load()

	cfg := setup.LoadConfig()
	log := logger.New(cfg.LogLevel, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *format != formatText && *format != formatCommand {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(2)
	}

	if *buffer != "" {
		host, err := editor.OpenFileHost(*buffer, *line-1, *settings, os.Stderr)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open buffer")
			os.Exit(1)
		}

		if *clearBuffer {
			if err := editor.NewAssistant(nil, &log).Clear(host); err != nil {
				log.Error().Err(err).Msg("Failed to clear buffer")
				os.Exit(1)
			}
			return
		}

		deps, err := setup.Wire(ctx, cfg, &log)
		if err != nil {
			log.Error().Err(err).Msg("Unable to load dependencies")
			os.Exit(1)
		}

		if err := deps.Assistant.Assist(ctx, host); err != nil {
			log.Debug().Err(err).Msg("Assist finished with error")
			os.Exit(1)
		}
		return
	}

	text := *prompt
	if *stdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Error().Err(err).Msg("Failed to read stdin")
			os.Exit(1)
		}
		text = string(data)
	}

	if text == "" {
		fmt.Fprintln(os.Stderr, "Usage: assist -buffer <file> [-line n] [-clear] | -prompt '<text>' | -stdin")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// The settings file fills in the model when the environment does not.
	if cfg.ClaudeModelID == "" {
		values, err := editor.LoadSettings(*settings)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load settings")
			os.Exit(1)
		}
		cfg.ClaudeModelID = strings.TrimSpace(values[editor.ModelSetting])
	}

	deps, err := setup.Wire(ctx, cfg, &log)
	if err != nil {
		log.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}

	status := completion.StatusFunc(func(s string) {
		if s != "" {
			fmt.Fprintln(os.Stderr, s)
		}
	})

	response := deps.Requester.Complete(ctx, text, deps.ModelID, status)

	if *format == formatCommand {
		fmt.Printf("'%s'\n", editor.EscapeCommandString(response))
		return
	}
	fmt.Println(response)
}

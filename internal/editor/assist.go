package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/claude-assist/internal/completion"
	"github.com/rs/zerolog"
)

const (
	greetingPrompt     = "Hello!"
	bufferReviewPrompt = "Here's the content of my current buffer. Please provide insights or suggestions:\n\n"

	requestingStatus = "Requesting response from Claude..."
	clearedStatus    = "Buffer cleared"
)

// Completer resolves a prompt to text. *completion.Requester satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string, modelID string, status completion.StatusNotifier) string
}

type Assistant struct {
	completer Completer
	logger    *zerolog.Logger
}

func NewAssistant(completer Completer, logger *zerolog.Logger) *Assistant {
	return &Assistant{
		completer: completer,
		logger:    logger,
	}
}

// Assist builds a prompt from the host buffer, requests a completion and
// writes the reply back into the buffer.
//
// An empty buffer starts a Human/Assistant transcript with a greeting. A
// blank current line sends the whole buffer for review. Otherwise the current
// line is the prompt and the reply is inserted below it.
func (a *Assistant) Assist(ctx context.Context, host Host) error {
	modelID, ok := host.Config(ModelSetting)
	if !ok || strings.TrimSpace(modelID) == "" {
		host.ShowStatus(fmt.Sprintf("Error: %s is not set. Please configure it before requesting a completion.", ModelSetting))
		return completion.ErrModelNotConfigured
	}
	modelID = strings.TrimSpace(modelID)

	lines := host.BufferLines()
	bufferContent := strings.TrimSpace(strings.Join(lines, "\n"))
	prompt := BuildPrompt(host.CurrentLine(), bufferContent)

	a.logger.Info().
		Str("model_id", modelID).
		Int("prompt_length", len(prompt)).
		Int("buffer_lines", len(lines)).
		Msg("requesting completion for buffer")

	host.ShowStatus(requestingStatus)
	response := a.completer.Complete(ctx, prompt, modelID, host)
	host.ShowStatus("")

	var updated []string
	if bufferContent == "" {
		updated = transcript(prompt, response)
	} else {
		updated = insertReply(lines, replyRow(host, len(lines)), response)
	}

	if err := host.SetBufferLines(updated); err != nil {
		return fmt.Errorf("failed to update buffer: %w", err)
	}
	return nil
}

// Clear empties the host buffer.
func (a *Assistant) Clear(host Host) error {
	if err := host.SetBufferLines([]string{}); err != nil {
		return fmt.Errorf("failed to clear buffer: %w", err)
	}
	host.ShowStatus(clearedStatus)
	return nil
}

// BuildPrompt chooses the prompt for the given cursor line and buffer.
func BuildPrompt(currentLine string, bufferContent string) string {
	currentLine = strings.TrimSpace(currentLine)
	bufferContent = strings.TrimSpace(bufferContent)

	switch {
	case bufferContent == "":
		return greetingPrompt
	case currentLine == "":
		return bufferReviewPrompt + bufferContent
	default:
		return currentLine
	}
}

func transcript(prompt string, response string) []string {
	lines := strings.Split("Human: "+prompt, "\n")
	return append(lines, strings.Split("Assistant: "+response, "\n")...)
}

func replyRow(host Host, lineCount int) int {
	if ch, ok := host.(CursorHost); ok {
		row := ch.CursorRow()
		if row >= 0 && row < lineCount {
			return row
		}
	}
	return lineCount - 1
}

// insertReply places a blank separator line and the reply below row.
func insertReply(lines []string, row int, response string) []string {
	reply := append([]string{""}, strings.Split(response, "\n")...)

	updated := make([]string, 0, len(lines)+len(reply))
	updated = append(updated, lines[:row+1]...)
	updated = append(updated, reply...)
	updated = append(updated, lines[row+1:]...)
	return updated
}

package editor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"go.yaml.in/yaml/v3"
)

// FileHost is a Host backed by a text file on disk. Settings come from an
// optional YAML file; an environment variable named after the upper-cased
// setting (CLAUDE_MODEL_ID for claude_model_id) takes precedence.
type FileHost struct {
	path     string
	lines    []string
	cursor   int
	settings map[string]string
	status   io.Writer
}

var (
	statusColor = color.New(color.FgCyan)
	errorColor  = color.New(color.FgRed, color.Bold)
)

// OpenFileHost loads the buffer at path. A missing file is an empty buffer.
// cursor is a 0-based row; a negative value places it on the last line.
func OpenFileHost(path string, cursor int, settingsPath string, status io.Writer) (*FileHost, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	if cursor < 0 || cursor >= len(lines) {
		cursor = len(lines) - 1
	}

	return &FileHost{
		path:     path,
		lines:    lines,
		cursor:   cursor,
		settings: settings,
		status:   status,
	}, nil
}

// LoadSettings reads a flat YAML map of editor settings. An empty path or a
// missing file yields no settings.
func LoadSettings(path string) (map[string]string, error) {
	settings := map[string]string{}
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}
	return settings, nil
}

func (h *FileHost) CurrentLine() string {
	if h.cursor < 0 || h.cursor >= len(h.lines) {
		return ""
	}
	return h.lines[h.cursor]
}

func (h *FileHost) CursorRow() int {
	return h.cursor
}

func (h *FileHost) BufferLines() []string {
	out := make([]string, len(h.lines))
	copy(out, h.lines)
	return out
}

// SetBufferLines replaces the buffer and rewrites the file atomically.
func (h *FileHost) SetBufferLines(lines []string) error {
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}

	dir := filepath.Dir(h.path)
	tmp, err := os.CreateTemp(dir, ".buffer-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	// Keep the buffer's permissions; CreateTemp uses 0600.
	mode := os.FileMode(0o644)
	if info, err := os.Stat(h.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set buffer permissions: %w", err)
	}

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write buffer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write buffer: %w", err)
	}
	if err := os.Rename(tmp.Name(), h.path); err != nil {
		return fmt.Errorf("failed to replace buffer file: %w", err)
	}

	h.lines = append([]string(nil), lines...)
	if h.cursor >= len(h.lines) {
		h.cursor = len(h.lines) - 1
	}
	return nil
}

func (h *FileHost) Config(name string) (string, bool) {
	if value, ok := os.LookupEnv(strings.ToUpper(name)); ok && value != "" {
		return value, true
	}
	value, ok := h.settings[name]
	return value, ok
}

// ShowStatus prints text on the status writer. Empty text clears nothing on
// a terminal and is dropped.
func (h *FileHost) ShowStatus(text string) {
	if text == "" || h.status == nil {
		return
	}
	if strings.HasPrefix(text, "Error") {
		errorColor.Fprintln(h.status, text)
		return
	}
	statusColor.Fprintln(h.status, text)
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read buffer file: %w", err)
	}

	content := strings.TrimSuffix(string(data), "\n")
	if content == "" {
		return []string{}, nil
	}
	return strings.Split(content, "\n"), nil
}

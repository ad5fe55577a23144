// Package editor connects the completion requester to a text editor.
package editor

// Host is the editor surface the assistant works against.
type Host interface {
	CurrentLine() string
	BufferLines() []string
	SetBufferLines(lines []string) error
	// Config looks up a named editor setting.
	Config(name string) (string, bool)
	ShowStatus(text string)
}

// CursorHost is implemented by hosts that know the cursor position. Replies
// are inserted below the cursor row instead of at the end of the buffer.
type CursorHost interface {
	Host
	CursorRow() int
}

// ModelSetting names the editor setting holding the model identifier.
const ModelSetting = "claude_model_id"

package editor

import "strings"

var commandStringReplacer = strings.NewReplacer(
	"'", "''",
	`\`, `\\`,
	"\n", `\n`,
)

// EscapeCommandString makes s safe to embed inside a single-quoted string of
// an editor command line. Quotes are doubled, backslashes are escaped and
// newlines become the two characters `\n`.
func EscapeCommandString(s string) string {
	return commandStringReplacer.Replace(s)
}

package protocol

import (
	"regexp"
	"strings"
)

// lineBreak matches one line terminator: CRLF, a lone CR, or a lone LF.
var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// SplitLines splits multi-line UI text into ordered entries. Every line break
// ends one entry, so blank lines and a trailing break yield empty entries.
// The empty string yields a single empty entry.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// JoinLines joins entries with CRLF, the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\r\n")
}

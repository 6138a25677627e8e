package util

import (
	"strings"
)

// DocLines splits a schema doc comment into trimmed lines, dropping comment
// markers and leading/trailing blank lines. Interior blank lines are kept.
func DocLines(doc string) []string {
	var lines []string
	for _, line := range strings.Split(doc, "\n") {
		lines = append(lines, CleanCommentText(line))
	}

	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// CleanCommentText removes comment markers and trims whitespace
func CleanCommentText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "#")
	text = strings.TrimPrefix(text, "//")
	return strings.TrimSpace(text)
}

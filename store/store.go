// Package store holds the two narrow persistence contracts the pipeline
// writes through: an append-only conversation log and a single-slot status
// register. Both are readable by unrelated processes, so the contract is
// independent of the backing medium (plain files, memory, Redis).
package store

import "strings"

// ConversationLog is an append-only, line-oriented record of exchanged
// utterances. Entries never contain newlines; Append sanitizes its input.
type ConversationLog interface {
	Append(text string) error
	ReadAll() ([]string, error)
	Clear() error
}

// StatusRegister holds the single current status string. Every Set fully
// replaces the previous value; there is no history.
type StatusRegister interface {
	Set(status string) error
	Get() (string, error)
}

// sanitizeEntry collapses embedded newlines so one entry always occupies
// exactly one line of the log.
func sanitizeEntry(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.TrimSpace(text)
}

// splitLines returns the non-blank lines of raw log content, in order.
func splitLines(raw string) []string {
	lines := []string{}
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

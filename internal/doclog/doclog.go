// Package doclog holds the ordered document texts that sit alongside the vector index.
// The document at position i corresponds to the vector at position i.
package doclog

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned by Get for a position outside the log.
var ErrOutOfRange = errors.New("document position out of range")

// Log is an append-only sequence of document texts. It is not safe for concurrent use;
// the search engine serializes access.
type Log struct {
	texts []string
}

// New returns a log seeded with texts. The slice is copied.
func New(texts []string) *Log {
	l := &Log{texts: make([]string, len(texts))}
	copy(l.texts, texts)
	return l
}

// Append adds text at the next position and returns that position.
// Repeated texts each get their own position.
func (l *Log) Append(text string) int {
	l.texts = append(l.texts, text)
	return len(l.texts) - 1
}

// Get returns the text at position.
func (l *Log) Get(position int) (string, error) {
	if position < 0 || position >= len(l.texts) {
		return "", fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, position, len(l.texts))
	}
	return l.texts[position], nil
}

// Len returns the number of documents.
func (l *Log) Len() int {
	return len(l.texts)
}

// Texts returns a copy of all texts in position order.
func (l *Log) Texts() []string {
	out := make([]string, len(l.texts))
	copy(out, l.texts)
	return out
}

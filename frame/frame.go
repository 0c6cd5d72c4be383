// Package frame wraps payload text in the start and end delimiter tokens
// that let an extractor locate it inside a noisy bitstream without a length
// prefix.
//
// The delimiters are part of the wire format. Every embed and extract path
// must use the constants declared here.
package frame

import (
	"errors"
	"strings"
)

const (
	// Version identifies the delimiter pair below.
	Version = 1

	StartDelimiter = ":::AETHER_START:::"
	EndDelimiter   = ":::AETHER_END:::"
)

var (
	ErrNotFound          = errors.New("no watermark frame found")
	ErrContainsDelimiter = errors.New("text contains a frame delimiter")
)

// Wrap returns StartDelimiter + text + EndDelimiter. Text is not escaped.
func Wrap(text string) string {
	return StartDelimiter + text + EndDelimiter
}

// Unwrap locates the first start token and the first end token in scanned
// and returns the text between them. ErrNotFound is returned when either
// token is missing or the end token does not follow the start token.
func Unwrap(scanned string) (string, error) {
	start := strings.Index(scanned, StartDelimiter)
	end := strings.Index(scanned, EndDelimiter)
	if start == -1 || end == -1 || end <= start {
		return "", ErrNotFound
	}
	// An end token overlapping the start token cannot close the frame.
	from := start + len(StartDelimiter)
	if end < from {
		return "", ErrNotFound
	}
	return scanned[from:end], nil
}

// Overhead is the number of bytes Wrap adds around the payload.
func Overhead() int {
	return len(StartDelimiter) + len(EndDelimiter)
}

// Contains reports whether text holds either delimiter token. Such text
// would misalign Unwrap if it were wrapped.
func Contains(text string) bool {
	return strings.Contains(text, StartDelimiter) || strings.Contains(text, EndDelimiter)
}

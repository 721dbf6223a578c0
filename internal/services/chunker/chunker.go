// Package chunker splits normalized text into overlapping fixed-size windows.
package chunker

import (
	"strings"
)

// DefaultMaxChars is the default window size in characters
const DefaultMaxChars = 1200

// DefaultOverlap is the default overlap between consecutive windows
const DefaultOverlap = 200

// Splitter produces overlapping fixed-size chunks
type Splitter struct {
	maxChars int
	overlap  int
}

// Option configures the splitter
type Option func(*Splitter)

// WithMaxChars sets the window size in characters
func WithMaxChars(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters
func WithOverlap(n int) Option {
	return func(s *Splitter) {
		if n >= 0 {
			s.overlap = n
		}
	}
}

// New creates a splitter with the given options
func New(opts ...Option) *Splitter {
	s := &Splitter{
		maxChars: DefaultMaxChars,
		overlap:  DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split trims surrounding whitespace and repeatedly takes a window of up to
// maxChars runes starting at the current offset. When a window reaches the
// end of text it is emitted and splitting stops; otherwise the next start is
// end-overlap clamped to >= 0. The clamp guarantees forward progress even
// when overlap >= maxChars. Empty input yields no chunks.
func (s *Splitter) Split(text string) []string {
	return Split(text, s.maxChars, s.overlap)
}

// Split is the underlying stateless splitter. Window arithmetic is
// rune-based so multi-byte sequences are never cut mid-character.
func Split(text string, maxChars, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	n := len(runes)
	if n == 0 {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + maxChars
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == n {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
		// overlap >= maxChars would revisit the same offset forever;
		// the emitted window already covered it, so step past.
		if start <= end-maxChars {
			start = end
		}
	}

	return chunks
}

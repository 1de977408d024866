// Package chunk splits extracted text into overlapping, size-bounded segments.
package chunk

import (
	"strings"
	"unicode"
)

// Chunker splits text into overlapping character-based chunks. Splitting is
// deterministic: identical input and parameters always yield the same
// sequence.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
// Non-positive size falls back to 800, and overlap is clamped below size so
// every window makes forward progress.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split splits text into chunks of at most chunkSize characters. Each chunk
// after the first begins chunkOverlap characters before the end of the
// previous chunk's span, so adjacent chunks share that many characters of the
// original text. When a window does not reach the end of the text, the cut
// prefers a paragraph break, then a sentence end, then a word boundary in the
// tail of the window, falling back to a hard character cut.
//
// The input is trimmed once up front. Text shorter than chunkSize yields a
// single chunk equal to the trimmed input; empty or whitespace-only input
// yields nil. The caller treats nil as a fatal ingestion condition.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []string{text}
	}
	chunks := make([]string, 0, len(runes)/(c.chunkSize-c.chunkOverlap)+1)
	start := 0
	for {
		end := start + c.chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := c.cutPoint(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - c.chunkOverlap
	}
	return chunks
}

// cutPoint returns the exclusive end index for the window [start, end).
// The search floor keeps cuts in the tail half of the window (and past the
// overlap region) so the next window always advances.
func (c *Chunker) cutPoint(runes []rune, start, end int) int {
	floor := start + c.chunkSize/2
	if min := start + c.chunkOverlap + 1; floor < min {
		floor = min
	}
	// Paragraph break: cut after the blank line.
	for i := end - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	// Sentence end: cut after the whitespace following terminal punctuation.
	for i := end - 1; i > floor; i-- {
		if unicode.IsSpace(runes[i]) && isSentenceEnd(runes[i-1]) {
			return i + 1
		}
	}
	// Word boundary: cut after the last space.
	for i := end - 1; i > floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

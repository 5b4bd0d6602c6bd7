// Package chunker splits extracted document text into overlapping,
// embedding-sized segments.
package chunker

import (
	"errors"
	"strings"
	"unicode"
)

// ErrEmptyInput indicates the input contained no chunkable text.
var ErrEmptyInput = errors.New("no chunkable text in input")

// Chunker splits text into segments of approximately Size characters with
// Overlap characters shared between consecutive segments. Splits happen at
// sentence boundaries; a sentence is only broken when it alone exceeds Size.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker with the given target size and overlap (both in
// characters). Non-positive size falls back to 1000; overlap is clamped to
// half the size so consecutive chunks always make forward progress.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits text into ordered segments. The result is post-processed:
// whitespace-trimmed, empty segments dropped, and exact-duplicate strings
// removed document-wide with first-occurrence order preserved. Returns
// ErrEmptyInput when nothing survives post-processing.
func (c *Chunker) Chunk(text string) ([]string, error) {
	sentences := c.splitSentences(text)

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Carry trailing sentences into the next chunk as overlap.
		var carry []string
		carryLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			if carryLen+len(current[i]) > c.overlap {
				break
			}
			carry = append([]string{current[i]}, carry...)
			carryLen += len(current[i]) + 1
		}
		current = carry
		currentLen = carryLen
	}

	for _, sentence := range sentences {
		if currentLen > 0 && currentLen+len(sentence) > c.size {
			flush()
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	result := dedupe(chunks)
	if len(result) == 0 {
		return nil, ErrEmptyInput
	}
	return result, nil
}

// splitSentences breaks text into sentences, hard-splitting any single
// sentence that exceeds the chunk size.
func (c *Chunker) splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		atTerminator := (r == '.' || r == '!' || r == '?') &&
			(i+1 >= len(runes) || unicode.IsSpace(runes[i+1]))
		atParagraph := r == '\n'

		if atTerminator || atParagraph {
			end := i
			if atTerminator {
				end = i + 1
			}
			if s := strings.TrimSpace(string(runes[start:end])); s != "" {
				sentences = append(sentences, s)
			}
			start = end
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}

	// Hard-split sentences that cannot fit in a single chunk.
	var out []string
	for _, s := range sentences {
		sr := []rune(s)
		for len(sr) > c.size {
			out = append(out, strings.TrimSpace(string(sr[:c.size])))
			sr = sr[c.size:]
		}
		if trimmed := strings.TrimSpace(string(sr)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// dedupe trims chunks, drops empties, and removes exact duplicates while
// preserving first-occurrence order. Duplicate elimination avoids paying for
// redundant embedding calls on repeated boilerplate (headers, footers).
func dedupe(chunks []string) []string {
	seen := make(map[string]struct{}, len(chunks))
	result := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

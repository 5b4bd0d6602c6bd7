package chunker

import (
	"errors"
	"strings"
	"testing"
)

// TestChunk_SentencesKeptWhole verifies chunks never break inside a sentence
// that fits within the target size.
func TestChunk_SentencesKeptWhole(t *testing.T) {
	sentences := []string{
		"The quick brown fox jumps over the lazy dog.",
		"Pack my box with five dozen liquor jugs.",
		"How vexingly quick daft zebras jump!",
		"Sphinx of black quartz, judge my vow.",
	}
	text := strings.Join(sentences, " ")

	c := New(60, 0)
	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if len(chunks) < 2 {
		t.Errorf("Expected multiple chunks for size 60, got %d", len(chunks))
	}

	for _, sentence := range sentences {
		found := false
		for _, chunk := range chunks {
			if strings.Contains(chunk, sentence) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Sentence split across chunks: %q", sentence)
		}
	}
}

// TestChunk_Overlap verifies consecutive chunks share trailing sentences.
func TestChunk_Overlap(t *testing.T) {
	text := "Aa bb cc. Dd ee ff. Gg hh ii. Jj kk ll."

	c := New(30, 12)
	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if !strings.HasSuffix(chunks[0], "Gg hh ii.") {
		t.Errorf("Chunk 0 should end with overlap sentence, got %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "Gg hh ii.") {
		t.Errorf("Chunk 1 should start with overlap sentence, got %q", chunks[1])
	}
}

// TestChunk_TrimmedAndNonEmpty verifies post-processing output invariants.
func TestChunk_TrimmedAndNonEmpty(t *testing.T) {
	text := "  First sentence here.  \n\n\n  Second sentence here.  \n"

	c := New(1000, 200)
	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	for i, chunk := range chunks {
		if chunk == "" {
			t.Errorf("Chunk %d is empty", i)
		}
		if chunk != strings.TrimSpace(chunk) {
			t.Errorf("Chunk %d not trimmed: %q", i, chunk)
		}
	}
}

// TestChunk_Dedupe verifies exact duplicates collapse to first occurrence.
func TestChunk_Dedupe(t *testing.T) {
	// Repeated boilerplate paragraph, as produced by per-page headers.
	text := "Unique opening line\nRepeated footer text\nAnother unique line\nRepeated footer text\n"

	c := New(20, 0)
	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	counts := make(map[string]int)
	for _, chunk := range chunks {
		counts[chunk]++
	}
	for chunk, n := range counts {
		if n > 1 {
			t.Errorf("Chunk %q appears %d times, want 1", chunk, n)
		}
	}
	if chunks[0] != "Unique opening line" {
		t.Errorf("First-occurrence order not preserved, got %q first", chunks[0])
	}
}

// TestChunk_EmptyInput verifies ErrEmptyInput on whitespace-only input.
func TestChunk_EmptyInput(t *testing.T) {
	c := New(1000, 200)

	for _, input := range []string{"", "   ", "\n\n\t  \n"} {
		_, err := c.Chunk(input)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Chunk(%q): expected ErrEmptyInput, got %v", input, err)
		}
	}
}

// TestChunk_OversizedSentence verifies a sentence longer than the chunk size
// is hard-split rather than emitted whole.
func TestChunk_OversizedSentence(t *testing.T) {
	long := strings.Repeat("abcde ", 50) + "end."

	c := New(100, 0)
	chunks, err := c.Chunk(long)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if len(chunks) < 3 {
		t.Errorf("Expected oversized sentence to split into >=3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 101 {
			t.Errorf("Chunk %d exceeds size bound: %d chars", i, len(chunk))
		}
	}
}

// TestChunk_SingleSmallDocument verifies a short document yields one chunk.
func TestChunk_SingleSmallDocument(t *testing.T) {
	c := New(1000, 200)
	chunks, err := c.Chunk("Just one short sentence.")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Just one short sentence." {
		t.Errorf("Unexpected chunk content: %q", chunks[0])
	}
}

package chunker

import (
	"strings"
	"unicode"
)

const (
	// DefaultMaxSize is the largest chunk, in characters, BoundaryChunker emits.
	DefaultMaxSize = 1000
	// DefaultOverlap is the number of characters shared by neighbouring chunks.
	DefaultOverlap = 100
)

// Span is a [Start, End) window of rune offsets into the normalized text.
type Span struct {
	Start int
	End   int
}

// BoundaryChunker carves normalized text into overlapping windows of at most
// MaxSize characters, ending each window at the best boundary it can find:
// sentence end, newline, clause punctuation, whitespace, then a hard cut.
type BoundaryChunker struct {
	MaxSize int
	Overlap int
	// WindowBounds measures the break-point search floor from the window size
	// instead of the length of the whole text.
	WindowBounds bool
}

// NewBoundaryChunker returns a chunker with defaults applied for non-positive sizes.
func NewBoundaryChunker(maxSize, overlap int, windowBounds bool) BoundaryChunker {
	return BoundaryChunker{MaxSize: maxSize, Overlap: overlap, WindowBounds: windowBounds}.withDefaults()
}

// Split normalizes text and returns boundary-aware chunks of at most maxSize
// characters that overlap by roughly overlap characters.
func Split(text string, maxSize, overlap int) []string {
	return BoundaryChunker{MaxSize: maxSize, Overlap: overlap}.Chunk(text)
}

// Normalize collapses every run of whitespace, newlines included, into a
// single space and trims the ends. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Chunk implements domain.Chunker.
func (c BoundaryChunker) Chunk(text string) []string {
	normalized := []rune(Normalize(text))
	spans := c.spans(normalized)
	chunks := make([]string, 0, len(spans))
	for _, sp := range spans {
		chunks = append(chunks, strings.TrimSpace(string(normalized[sp.Start:sp.End])))
	}
	return chunks
}

// Spans returns the untrimmed windows Chunk would emit, as rune offsets into
// Normalize(text).
func (c BoundaryChunker) Spans(text string) []Span {
	return c.spans([]rune(Normalize(text)))
}

func (c BoundaryChunker) withDefaults() BoundaryChunker {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	return c
}

func (c BoundaryChunker) spans(text []rune) []Span {
	c = c.withDefaults()
	n := len(text)
	if n == 0 {
		return nil
	}
	if n <= c.MaxSize {
		return []Span{{Start: 0, End: n}}
	}

	var spans []Span
	start := 0
	for start < n {
		end := start + c.MaxSize
		if end >= n {
			if !isBlank(text[start:]) {
				spans = append(spans, Span{Start: start, End: n})
			}
			break
		}

		breakPoint := c.findBreakPoint(text, start, end)
		if breakPoint < 0 {
			breakPoint = end
		}
		if !isBlank(text[start:breakPoint]) {
			spans = append(spans, Span{Start: start, End: breakPoint})
		}

		// step back by overlap but always move forward
		start = max(breakPoint-c.Overlap, start+1)
	}
	return spans
}

// findBreakPoint scans backwards from end-1 and returns the index just past
// the first boundary found, or -1. Sentence ends and newlines are searched
// further back than clause punctuation and plain whitespace.
func (c BoundaryChunker) findBreakPoint(text []rune, start, end int) int {
	span := len(text)
	if c.WindowBounds {
		span = end - start
	}
	near := start + span/4
	far := start + span/2

	followedBySpace := func(i int) bool {
		return i+1 == len(text) || unicode.IsSpace(text[i+1])
	}

	for i := end - 1; i > near; i-- {
		if isSentenceEnd(text[i]) && followedBySpace(i) {
			return i + 1
		}
	}
	for i := end - 1; i > near; i-- {
		if text[i] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i > far; i-- {
		if isClausePunct(text[i]) && followedBySpace(i) {
			return i + 1
		}
	}
	for i := end - 1; i > far; i-- {
		if unicode.IsSpace(text[i]) {
			return i + 1
		}
	}
	return -1
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isClausePunct(r rune) bool {
	return r == ';' || r == ':' || r == ','
}

func isBlank(text []rune) bool {
	for _, r := range text {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

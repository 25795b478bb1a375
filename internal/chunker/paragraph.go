package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultParagraphMaxSize bounds a chunk built from whole paragraphs.
	DefaultParagraphMaxSize = 1500
	// DefaultParagraphMinSize is the smallest chunk emitted on its own.
	DefaultParagraphMinSize = 200

	oversizedParagraphOverlap = 50
	paragraphSeparator        = "\n\n"
)

// ParagraphChunker groups blank-line separated paragraphs into chunks between
// MinSize and MaxSize characters. Paragraphs longer than MaxSize are split
// with the boundary chunker.
type ParagraphChunker struct {
	MaxSize int
	MinSize int
}

// NewParagraphChunker returns a chunker with defaults applied for non-positive sizes.
func NewParagraphChunker(maxSize, minSize int) ParagraphChunker {
	return ParagraphChunker{MaxSize: maxSize, MinSize: minSize}.withDefaults()
}

// SmartChunk groups the paragraphs of text into chunks of roughly minSize to
// maxSize characters.
func SmartChunk(text string, maxSize, minSize int) []string {
	return ParagraphChunker{MaxSize: maxSize, MinSize: minSize}.Chunk(text)
}

func (c ParagraphChunker) withDefaults() ParagraphChunker {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultParagraphMaxSize
	}
	if c.MinSize < 0 {
		c.MinSize = 0
	}
	return c
}

// Chunk implements domain.Chunker.
func (c ParagraphChunker) Chunk(text string) []string {
	c = c.withDefaults()

	var paragraphs []string
	for _, p := range strings.Split(text, paragraphSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var chunks []string
	var buf string

	// settle emits the pending buffer, folding it into the previous chunk
	// when it is too small to stand alone.
	settle := func() {
		if buf == "" {
			return
		}
		if utf8.RuneCountInString(buf) >= c.MinSize || len(chunks) == 0 {
			chunks = append(chunks, buf)
		} else {
			chunks[len(chunks)-1] += paragraphSeparator + buf
		}
		buf = ""
	}

	for _, p := range paragraphs {
		plen := utf8.RuneCountInString(p)
		if plen > c.MaxSize {
			settle()
			chunks = append(chunks, Split(p, c.MaxSize, oversizedParagraphOverlap)...)
			continue
		}
		if buf == "" {
			buf = p
			continue
		}
		blen := utf8.RuneCountInString(buf)
		if blen+plen+len(paragraphSeparator) > c.MaxSize && blen >= c.MinSize {
			chunks = append(chunks, buf)
			buf = p
			continue
		}
		buf += paragraphSeparator + p
	}
	settle()

	return chunks
}

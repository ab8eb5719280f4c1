// Package chunker provides the sliding-window token chunker.
//
// Each full window emits only its middle segment; the trailing partial
// window is emitted whole so the end of a document is never lost.
package chunker

import (
	"fmt"
	"iter"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// DefaultChunkSize is the default window width in tokens.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of tokens shared by adjacent windows.
const DefaultChunkOverlap = domain.DefaultOverlap

// Span is a half-open token range [Start, End).
type Span struct {
	Start int
	End   int
}

// Len returns the number of tokens in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Chunker splits parsed documents into citation-addressed chunks.
type Chunker struct {
	tokenizer driven.Tokenizer
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the window width in tokens.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between windows in tokens.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. The window geometry is validated once here,
// so chunking a document never fails on configuration.
func New(tokenizer driven.Tokenizer, opts ...Option) (*Chunker, error) {
	if tokenizer == nil {
		return nil, fmt.Errorf("chunker: tokenizer is nil: %w", domain.ErrInvalidInput)
	}

	c := &Chunker{
		tokenizer: tokenizer,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("chunker: chunk size must be positive, got %d: %w",
			c.chunkSize, domain.ErrInvalidConfiguration)
	}
	if c.overlap < 0 || c.overlap >= c.chunkSize {
		return nil, fmt.Errorf("chunker: overlap %d must be in [0, %d): %w",
			c.overlap, c.chunkSize, domain.ErrInvalidConfiguration)
	}

	return c, nil
}

// Name returns the chunker name.
func (c *Chunker) Name() string {
	return "sliding_window"
}

// ChunkSize returns the window width in tokens.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the overlap in tokens.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// StepSize returns how far the window advances each iteration.
func (c *Chunker) StepSize() int {
	return c.chunkSize - c.overlap
}

// Spans returns the emitted token spans for a document of n tokens.
func (c *Chunker) Spans(n int) []Span {
	if n <= c.chunkSize {
		return []Span{{Start: 0, End: n}}
	}

	step := c.StepSize()
	padding := c.overlap / 2
	spans := make([]Span, 0, n/step+1)

	for windowStart := 0; windowStart < n; windowStart += step {
		windowEnd := min(windowStart+c.chunkSize, n)

		var span Span
		if windowEnd-windowStart == c.chunkSize {
			// Full window: keep only the middle segment.
			span = Span{Start: windowStart + padding, End: windowStart + padding + step}
		} else {
			// Trailing partial window: keep everything.
			span = Span{Start: windowStart, End: windowEnd}
		}

		span.Start = max(span.Start, windowStart)
		span.End = min(span.End, windowEnd)
		if span.Start >= span.End {
			break
		}

		spans = append(spans, span)
	}

	return spans
}

// Chunk lazily yields the document's chunks with local indices starting at 0.
// A tokenization or decoding failure is yielded once as domain.ErrEncoding
// and ends the sequence.
func (c *Chunker) Chunk(doc *domain.ParsedDocument) iter.Seq2[domain.Chunk, error] {
	return func(yield func(domain.Chunk, error) bool) {
		docID := doc.DocID()

		tokens, err := c.tokenizer.Encode(doc.Text)
		if err != nil {
			yield(domain.Chunk{}, fmt.Errorf("tokenizing %s: %w: %w", docID, domain.ErrEncoding, err))
			return
		}

		for i, span := range c.Spans(len(tokens)) {
			text, err := c.tokenizer.Decode(tokens[span.Start:span.End])
			if err != nil {
				yield(domain.Chunk{}, fmt.Errorf("decoding %s [%d,%d): %w: %w",
					docID, span.Start, span.End, domain.ErrEncoding, err))
				return
			}

			chunk := domain.Chunk{
				ID:          domain.ChunkID(docID, i),
				DocID:       docID,
				Order:       i,
				Text:        text,
				Tokens:      span.Len(),
				Citation:    domain.NewCitation(docID, doc.MediaType, span.Start, span.End),
				StartOffset: span.Start,
				EndOffset:   span.End,
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// ChunkAll collects every chunk of the document.
// Nothing is returned for a document whose chunking fails.
func (c *Chunker) ChunkAll(doc *domain.ParsedDocument) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for chunk, err := range c.Chunk(doc) {
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

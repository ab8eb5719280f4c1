package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CitationPrefix opens every citation string.
const CitationPrefix = "§"

// chunkIDHashLen is the number of leading hash characters kept in a chunk ID.
const chunkIDHashLen = 8

// Chunk is a token-bounded span of a document.
// It is created by the chunker, has its Order rewritten once by the
// global orderer, and is immutable afterwards.
type Chunk struct {
	// ID is "{first 8 hex chars of DocID}_c{localIndex}".
	// It is unique within a document only.
	ID string

	// DocID is the owning document's content hash.
	DocID string

	// Order is the local index after chunking and the corpus-wide
	// position after global ordering.
	Order int

	// Text is the decoded text of the token span.
	Text string

	// Tokens is the number of tokens in the span.
	Tokens int

	// Citation addresses the span within its document.
	Citation string

	// StartOffset is the first token index of the span (inclusive).
	StartOffset int

	// EndOffset is the token index one past the span (exclusive).
	EndOffset int
}

// ChunkID builds the document-scoped chunk identifier.
func ChunkID(docID string, localIndex int) string {
	prefix := docID
	if len(prefix) > chunkIDHashLen {
		prefix = prefix[:chunkIDHashLen]
	}
	return fmt.Sprintf("%s_c%d", prefix, localIndex)
}

// NewCitation builds the citation for a token span.
// The result depends only on its arguments.
func NewCitation(docID string, mediaType MediaType, start, end int) string {
	return fmt.Sprintf("%s%s:%s:%d:%d", CitationPrefix, docID, mediaType.Letter(), start, end)
}

// CitationRef is a parsed citation.
type CitationRef struct {
	DocID       string
	MediaType   MediaType
	StartOffset int
	EndOffset   int
}

// String formats the reference back into its citation string.
func (c CitationRef) String() string {
	return NewCitation(c.DocID, c.MediaType, c.StartOffset, c.EndOffset)
}

// ParseCitation parses a citation string produced by NewCitation.
func ParseCitation(s string) (CitationRef, error) {
	rest, ok := strings.CutPrefix(s, CitationPrefix)
	if !ok {
		return CitationRef{}, fmt.Errorf("citation %q: missing prefix: %w", s, ErrInvalidInput)
	}

	parts := strings.Split(rest, ":")
	if len(parts) != 4 || parts[0] == "" {
		return CitationRef{}, fmt.Errorf("citation %q: expected 4 fields: %w", s, ErrInvalidInput)
	}

	mediaType, ok := MediaTypeFromLetter(parts[1])
	if !ok {
		return CitationRef{}, fmt.Errorf("citation %q: unknown media letter %q: %w", s, parts[1], ErrInvalidInput)
	}

	start, err := strconv.Atoi(parts[2])
	if err != nil {
		return CitationRef{}, fmt.Errorf("citation %q: start offset: %w", s, ErrInvalidInput)
	}
	end, err := strconv.Atoi(parts[3])
	if err != nil {
		return CitationRef{}, fmt.Errorf("citation %q: end offset: %w", s, ErrInvalidInput)
	}
	if start < 0 || end < start {
		return CitationRef{}, fmt.Errorf("citation %q: bad span [%d,%d): %w", s, start, end, ErrInvalidInput)
	}

	return CitationRef{DocID: parts[0], MediaType: mediaType, StartOffset: start, EndOffset: end}, nil
}

// ScoredChunk is a chunk paired with the score a scorer gave it for one query.
// The score range is defined by the scorer.
type ScoredChunk struct {
	Chunk
	Score float64
}

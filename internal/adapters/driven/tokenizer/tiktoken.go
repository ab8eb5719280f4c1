package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

var _ driven.Tokenizer = (*Tiktoken)(nil)

// Tiktoken wraps a BPE encoding such as cl100k_base.
type Tiktoken struct {
	name     string
	encoding *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding.
// Returns domain.ErrModelUnavailable if the BPE ranks cannot be loaded.
func NewTiktoken(name string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("loading encoding %s: %w: %w", name, domain.ErrModelUnavailable, err)
	}
	return &Tiktoken{name: name, encoding: enc}, nil
}

// Name returns the encoding name.
func (t *Tiktoken) Name() string {
	return t.name
}

// Encode tokenizes text. Special token markers are encoded as ordinary text.
func (t *Tiktoken) Encode(text string) ([]int, error) {
	return t.encoding.Encode(text, nil, nil), nil
}

// Decode converts token ids back to text.
// A span cut inside a multi-byte character decodes to U+FFFD.
func (t *Tiktoken) Decode(tokens []int) (string, error) {
	return strings.ToValidUTF8(t.encoding.Decode(tokens), "\uFFFD"), nil
}

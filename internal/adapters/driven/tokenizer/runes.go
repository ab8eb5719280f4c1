package tokenizer

import (
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// RunesName is the registry name of the code point tokenizer.
const RunesName = "runes"

var _ driven.Tokenizer = (*Runes)(nil)

// Runes tokenizes text into Unicode code points.
type Runes struct{}

// NewRunes creates a code point tokenizer.
func NewRunes() *Runes {
	return &Runes{}
}

// Name returns the tokenizer name.
func (r *Runes) Name() string {
	return RunesName
}

// Encode returns one token per code point.
// Invalid UTF-8 is rejected rather than silently replaced.
func (r *Runes) Encode(text string) ([]int, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("runes: text is not valid UTF-8: %w", domain.ErrEncoding)
	}
	tokens := make([]int, 0, len(text))
	for _, c := range text {
		tokens = append(tokens, int(c))
	}
	return tokens, nil
}

// Decode converts code points back to text.
func (r *Runes) Decode(tokens []int) (string, error) {
	runes := make([]rune, len(tokens))
	for i, t := range tokens {
		if t < 0 || t > utf8.MaxRune || !utf8.ValidRune(rune(t)) {
			return "", fmt.Errorf("runes: token %d is not a code point: %w", t, domain.ErrEncoding)
		}
		runes[i] = rune(t)
	}
	return string(runes), nil
}

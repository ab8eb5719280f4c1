package driven

// Tokenizer maps text to an ordered sequence of token ids and back.
// Implementations must be deterministic.
type Tokenizer interface {
	// Name returns the encoding name (e.g. "cl100k_base").
	Name() string

	// Encode tokenizes text.
	Encode(text string) ([]int, error)

	// Decode converts token ids back to text.
	Decode(tokens []int) (string, error)
}

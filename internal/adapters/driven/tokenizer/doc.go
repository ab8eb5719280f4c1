// Package tokenizer provides driven.Tokenizer implementations.
//
// The tiktoken tokenizers load BPE ranks through github.com/pkoukk/tiktoken-go,
// which fetches and caches them on first use (set TIKTOKEN_CACHE_DIR to pin
// the cache location for offline runs). The runes tokenizer maps each Unicode
// code point to one token and needs no data files.
package tokenizer

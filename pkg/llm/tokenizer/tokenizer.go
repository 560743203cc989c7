// Package tokenizer estimates prompt sizes with tiktoken.
package tokenizer

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding sizes prompts for both backends.
const DefaultEncoding = "cl100k_base"

// Tokenizer counts tokens. A nil *Tokenizer falls back to a characters/4
// estimate, so callers never need to check for initialization failure.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New loads the default encoding. Loading may fetch the BPE ranks over the
// network on first use.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", DefaultEncoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.enc == nil {
		return Estimate(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Estimate approximates a token count as one token per four characters.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

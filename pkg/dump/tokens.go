package dump

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultTokenModel is used when no model is configured.
	DefaultTokenModel   = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// TokenCounter estimates token counts for text content.
type TokenCounter interface {
	Name() string
	CountString(input string) (int, error)
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTokenCounter returns a tiktoken-backed counter for model, falling back to
// the cl100k_base encoding for models tiktoken does not know.
func NewTokenCounter(model string) (TokenCounter, error) {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		model = DefaultTokenModel
	}
	encoding, err := tiktoken.EncodingForModel(model)
	if err == nil && encoding != nil {
		return tiktokenCounter{encoding: encoding, name: model}, nil
	}
	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, fmt.Errorf("initialize tokenizer: %w", fallbackErr)
	}
	return tiktokenCounter{encoding: fallback, name: defaultEncodingName}, nil
}

func (counter tiktokenCounter) Name() string {
	return counter.name
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	return len(counter.encoding.Encode(input, nil, nil)), nil
}

// countTokens sums the token estimate over every file body.
func countTokens(counter TokenCounter, contents []FileContent) (int, error) {
	total := 0
	for _, content := range contents {
		tokens, err := counter.CountString(content.Content)
		if err != nil {
			return 0, fmt.Errorf("count tokens for %s: %w", content.Path, err)
		}
		total += tokens
	}
	return total, nil
}

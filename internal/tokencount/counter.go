// Package tokencount estimates prompt token usage for selected files. Counts
// are cached per path and concurrent requests for the same path collapse
// into one computation.
package tokencount

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

const defaultEncodingName = "cl100k_base"

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewCounter returns a Counter backed by the cl100k_base encoding, which
// tracks closely enough across current chat models for budgeting purposes.
func NewCounter() (Counter, error) {
	encoding, err := tiktoken.GetEncoding(defaultEncodingName)
	if err != nil {
		return nil, fmt.Errorf("initialize tokenizer: %w", err)
	}
	return tiktokenCounter{encoding: encoding, name: defaultEncodingName}, nil
}

func (c tiktokenCounter) Name() string { return c.name }

func (c tiktokenCounter) CountString(input string) (int, error) {
	if input == "" {
		return 0, nil
	}
	tokenIDs := c.encoding.Encode(input, nil, nil)
	return len(tokenIDs), nil
}

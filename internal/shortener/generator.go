package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const (
	// Alphabet is the set of characters used in generated codes.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	MinCodeLength     = 7
	MaxCodeLength     = 21
	DefaultCodeLength = 8
)

// CodeGenerator generates random short codes. It does not check for collisions.
type CodeGenerator func() string

// NewGenerator returns a CodeGenerator producing alphanumeric codes of the given length.
func NewGenerator(length int) (CodeGenerator, error) {
	if length < MinCodeLength || length > MaxCodeLength {
		return nil, fmt.Errorf("code length must be between %d and %d, got %d",
			MinCodeLength, MaxCodeLength, length)
	}

	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}

	return gen, nil
}

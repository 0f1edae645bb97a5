package search

import (
	"fmt"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// Alphabet is an ordered set of distinct printable ASCII characters.
// Candidates are enumerated in the order characters appear here.
type Alphabet string

// DefaultAlphabet holds the 92 characters used for generated comments.
const DefaultAlphabet Alphabet = "0123456789" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz" +
	" !@#$%^&*()-_=+[]{}|;:',.<>?/`~"

// NewAlphabet validates s and returns it as an Alphabet.
func NewAlphabet(s string) (Alphabet, error) {
	a := Alphabet(s)
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

// Validate reports whether a is non-empty, printable ASCII and free of duplicates.
func (a Alphabet) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("%w: alphabet is empty", flywaysum.ErrInvalidConfig)
	}
	var seen [128]bool
	for i := 0; i < len(a); i++ {
		c := a[i]
		if c < 0x20 || c > 0x7E {
			return fmt.Errorf("%w: alphabet character %q at %d is not printable ASCII", flywaysum.ErrInvalidConfig, c, i)
		}
		if seen[c] {
			return fmt.Errorf("%w: alphabet character %q repeated", flywaysum.ErrInvalidConfig, c)
		}
		seen[c] = true
	}
	return nil
}

// Len returns the number of characters.
func (a Alphabet) Len() int { return len(a) }

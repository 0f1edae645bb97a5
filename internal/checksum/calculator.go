package checksum

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// byteOrderMark is U+FEFF encoded as UTF-8.
var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Calculator computes migration checksums.
type Calculator interface {
	// Calculate returns the checksum of content.
	Calculate(content []byte) (flywaysum.Checksum, error)

	// BaseState returns the accumulator state after all of content, so
	// further lines can be hashed without re-reading content.
	BaseState(content []byte) (State, error)
}

// Flyway implements the Flyway checksum rule.
// Flyway is a zero-size type and is safe for concurrent use.
type Flyway struct{}

// New creates a Flyway checksum calculator.
func New() Flyway {
	return Flyway{}
}

// Calculate returns the Flyway checksum of content.
func (c Flyway) Calculate(content []byte) (flywaysum.Checksum, error) {
	s, err := c.BaseState(content)
	if err != nil {
		return 0, err
	}
	return s.Checksum(), nil
}

// CalculateString is Calculate for string content.
func (c Flyway) CalculateString(content string) (flywaysum.Checksum, error) {
	return c.Calculate([]byte(content))
}

// BaseState returns the register after feeding every line of content.
func (c Flyway) BaseState(content []byte) (State, error) {
	acc := NewAccumulator()
	if err := c.Feed(acc, content); err != nil {
		return State{}, err
	}
	return acc.Snapshot(), nil
}

// Feed writes the normalized lines of content to w: each '\n'-separated
// line, minus one leading byte order mark, without the separator.
// Every line is checked for a BOM, not only the first.
func (c Flyway) Feed(w io.Writer, content []byte) error {
	if off := invalidUTF8Offset(content); off >= 0 {
		return fmt.Errorf("%w: invalid byte at offset %d", flywaysum.ErrInvalidUTF8, off)
	}

	rest := content
	for {
		line := rest
		i := bytes.IndexByte(rest, '\n')
		if i >= 0 {
			line = rest[:i]
		}
		line = bytes.TrimPrefix(line, byteOrderMark)
		if len(line) > 0 {
			if _, err := w.Write(line); err != nil {
				return err
			}
		}
		if i < 0 {
			return nil
		}
		rest = rest[i+1:]
	}
}

func invalidUTF8Offset(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

var _ Calculator = Flyway{}

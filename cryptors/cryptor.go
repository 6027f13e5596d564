// cyptor
package cryptors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// AlphabetSize is the number of symbols the machine can encipher.
	AlphabetSize = 26
	// RotorCount is the number of cipher rotors in an assembly.
	RotorCount = 3
	// MaxPlugboardPairs is the number of cables supplied with the machine.
	MaxPlugboardPairs = 10
	// Alphabet is the ordered set of symbols the machine works on.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var (
	// ErrValidation is wrapped by every error caused by a malformed wiring,
	// setting, indicator, symbol or crib.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is wrapped when a rotor or reflector id is not known to a
	// wiring source.
	ErrNotFound = errors.New("not found")
)

// Invalid returns an error wrapping ErrValidation.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsSymbol reports whether c is one of the 26 uppercase symbols.
func IsSymbol(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// Index returns the zero based position of c in the alphabet.
func Index(c byte) (int, error) {
	if !IsSymbol(c) {
		return 0, Invalid("symbol %q is not in the alphabet", c)
	}
	return int(c - 'A'), nil
}

// Symbol returns the symbol at position idx, which must be in [0, 26).
// An out of range index is a programming error and panics.
func Symbol(idx int) byte {
	if idx < 0 || idx >= AlphabetSize {
		panic(fmt.Sprintf("cryptors: alphabet index %d out of range", idx))
	}
	return Alphabet[idx]
}

// Mod reduces n into [0, 26).
func Mod(n int) int {
	n %= AlphabetSize
	if n < 0 {
		n += AlphabetSize
	}
	return n
}

// CheckText verifies that every byte of text is an alphabet symbol.
func CheckText(text string) error {
	for i := 0; i < len(text); i++ {
		if !IsSymbol(text[i]) {
			return Invalid("symbol %q at position %d is not in the alphabet", text[i], i)
		}
	}
	return nil
}

// Normalize folds lower case letters to upper case and drops everything
// that is not a letter of the alphabet.
func Normalize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z':
			sb.WriteByte(c - 'a' + 'A')
		case IsSymbol(c):
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Positions holds one offset per cipher rotor, fastest rotor first.
type Positions [RotorCount]int

// ParsePositions converts a key such as "QRS" into rotor offsets.
func ParsePositions(key string) (Positions, error) {
	var p Positions
	if len(key) != RotorCount {
		return p, Invalid("key %q must be %d symbols long", key, RotorCount)
	}
	for i := 0; i < RotorCount; i++ {
		idx, err := Index(key[i])
		if err != nil {
			return p, err
		}
		p[i] = idx
	}
	return p, nil
}

// Validate checks that every offset is in [0, 26).
func (p Positions) Validate() error {
	for i, o := range p {
		if o < 0 || o >= AlphabetSize {
			return Invalid("position %d of rotor %d is outside [0, %d)", o, i, AlphabetSize)
		}
	}
	return nil
}

// String renders the offsets as letters, e.g. "QRS".
func (p Positions) String() string {
	var b [RotorCount]byte
	for i, o := range p {
		b[i] = Symbol(Mod(o))
	}
	return string(b[:])
}

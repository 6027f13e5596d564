// rotor
package rotor

import (
	"fmt"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/cryptors/bitops"
)

// Wiring is the immutable part of a rotor: the substitution table, its
// inverse and the notch.  A Wiring is never modified after construction and
// may be shared by any number of rotors.
type Wiring struct {
	forward [cryptors.AlphabetSize]byte
	reverse [cryptors.AlphabetSize]byte
	notch   int
}

// parsePermutation converts a 26 symbol permutation into a table of indices.
func parsePermutation(permutation string) ([cryptors.AlphabetSize]byte, error) {
	var table [cryptors.AlphabetSize]byte
	if len(permutation) != cryptors.AlphabetSize {
		return table, cryptors.Invalid("wiring %q has %d symbols, want %d",
			permutation, len(permutation), cryptors.AlphabetSize)
	}
	var seen bitops.LetterSet
	for i := 0; i < cryptors.AlphabetSize; i++ {
		idx, err := cryptors.Index(permutation[i])
		if err != nil {
			return table, fmt.Errorf("wiring %q: %w", permutation, err)
		}
		seen = seen.SetBit(idx)
		table[i] = byte(idx)
	}
	if !seen.Full() {
		for i := 0; i < cryptors.AlphabetSize; i++ {
			if !seen.GetBit(i) {
				return table, cryptors.Invalid("wiring %q does not contain %c", permutation, cryptors.Symbol(i))
			}
		}
	}
	return table, nil
}

// NewWiring builds the tables for a rotor from its permutation string and
// its notch symbol.  The rotor turns over when its offset reaches the
// position of the notch symbol within the permutation.
func NewWiring(permutation string, notch byte) (*Wiring, error) {
	forward, err := parsePermutation(permutation)
	if err != nil {
		return nil, err
	}
	n, err := cryptors.Index(notch)
	if err != nil {
		return nil, fmt.Errorf("notch: %w", err)
	}
	w := &Wiring{forward: forward}
	for i, v := range forward {
		w.reverse[v] = byte(i)
	}
	w.notch = int(w.reverse[n])
	return w, nil
}

// Notch returns the offset at which the rotor turns its neighbour over.
func (w *Wiring) Notch() int {
	return w.notch
}

// NotchSymbol returns the symbol the notch was given as.
func (w *Wiring) NotchSymbol() byte {
	return cryptors.Symbol(int(w.forward[w.notch]))
}

// String returns the permutation string the wiring was built from.
func (w *Wiring) String() string {
	var b [cryptors.AlphabetSize]byte
	for i, v := range w.forward {
		b[i] = cryptors.Symbol(int(v))
	}
	return string(b[:])
}

// Rotor is a Wiring plus the mutable rotational offset and turnover flag.
type Rotor struct {
	wiring   *Wiring
	offset   int
	turnover bool
}

// New creates a rotor at offset 0 from a permutation and notch symbol.
func New(permutation string, notch byte) (*Rotor, error) {
	w, err := NewWiring(permutation, notch)
	if err != nil {
		return nil, err
	}
	return FromWiring(w), nil
}

// FromWiring creates a rotor at offset 0 that shares the tables of w.
func FromWiring(w *Wiring) *Rotor {
	return &Rotor{wiring: w}
}

func (r *Rotor) Wiring() *Wiring {
	return r.wiring
}

func (r *Rotor) Position() int {
	return r.offset
}

// SetPosition sets the rotational offset.  The turnover flag is left as is.
func (r *Rotor) SetPosition(p int) error {
	if p < 0 || p >= cryptors.AlphabetSize {
		return cryptors.Invalid("rotor position %d is outside [0, %d)", p, cryptors.AlphabetSize)
	}
	r.offset = p
	return nil
}

// Advance moves the rotor one step and raises the turnover flag if the new
// offset is the notch.
func (r *Rotor) Advance() {
	r.offset = (r.offset + 1) % cryptors.AlphabetSize
	if r.offset == r.wiring.notch {
		r.turnover = true
	}
}

// Turnover reports the flag without clearing it.
func (r *Rotor) Turnover() bool {
	return r.turnover
}

// ConsumeTurnover returns the turnover flag and clears it.
func (r *Rotor) ConsumeTurnover() bool {
	t := r.turnover
	r.turnover = false
	return t
}

// EncodeForward substitutes c on the way in to the reflector.  c must be an
// alphabet symbol.
func (r *Rotor) EncodeForward(c byte) byte {
	idx := cryptors.Mod(int(c-'A') + r.offset)
	return cryptors.Symbol(int(r.wiring.forward[idx]))
}

// EncodeReverse is the inverse of EncodeForward at the same offset.
func (r *Rotor) EncodeReverse(c byte) byte {
	idx := int(r.wiring.reverse[c-'A'])
	return cryptors.Symbol(cryptors.Mod(idx - r.offset))
}

func (r *Rotor) String() string {
	return fmt.Sprintf("rotor.New(%q, '%c') at %c turnover=%v",
		r.wiring.String(), r.wiring.NotchSymbol(), cryptors.Symbol(r.offset), r.turnover)
}

// Reflector is a fixed, fixed-point-free involution.  Because no symbol is
// reflected onto itself, the machine never enciphers a letter to itself.
type Reflector struct {
	table [cryptors.AlphabetSize]byte
}

// NewReflector validates permutation and builds a reflector from it.
func NewReflector(permutation string) (*Reflector, error) {
	table, err := parsePermutation(permutation)
	if err != nil {
		return nil, err
	}
	for i, v := range table {
		if int(v) == i {
			return nil, cryptors.Invalid("reflector %q maps %c to itself", permutation, cryptors.Symbol(i))
		}
		if int(table[v]) != i {
			return nil, cryptors.Invalid("reflector %q is not an involution at %c", permutation, cryptors.Symbol(i))
		}
	}
	return &Reflector{table: table}, nil
}

// Encode reflects c, which must be an alphabet symbol.
func (rf *Reflector) Encode(c byte) byte {
	return cryptors.Symbol(int(rf.table[c-'A']))
}

func (rf *Reflector) String() string {
	var b [cryptors.AlphabetSize]byte
	for i, v := range rf.table {
		b[i] = cryptors.Symbol(int(v))
	}
	return string(b[:])
}

// Package plugboard implements the swap cables between the keyboard and the
// rotors.
package plugboard

import (
	"fmt"
	"strings"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/cryptors/bitops"
)

// Plugboard swaps the two letters of every connected pair and passes all
// other letters through unchanged.
type Plugboard struct {
	table [cryptors.AlphabetSize]byte
	pairs []string
}

// New builds a plugboard from pairs such as "AB".  An empty list is a valid
// plugboard with no cables.
func New(pairs []string) (*Plugboard, error) {
	if len(pairs) > cryptors.MaxPlugboardPairs {
		return nil, cryptors.Invalid("%d plugboard pairs given, at most %d allowed",
			len(pairs), cryptors.MaxPlugboardPairs)
	}
	var p Plugboard
	for i := range p.table {
		p.table[i] = byte(i)
	}
	var used bitops.LetterSet
	for _, pair := range pairs {
		if len(pair) != 2 {
			return nil, cryptors.Invalid("plugboard pair %q must have exactly two symbols", pair)
		}
		a, err := cryptors.Index(pair[0])
		if err != nil {
			return nil, fmt.Errorf("plugboard pair %q: %w", pair, err)
		}
		b, err := cryptors.Index(pair[1])
		if err != nil {
			return nil, fmt.Errorf("plugboard pair %q: %w", pair, err)
		}
		if a == b {
			return nil, cryptors.Invalid("plugboard pair %q connects a symbol to itself", pair)
		}
		next := used.SetBit(a).SetBit(b)
		if next.Len() != used.Len()+2 {
			return nil, cryptors.Invalid("plugboard pair %q reuses a connected symbol", pair)
		}
		used = next
		p.table[a], p.table[b] = byte(b), byte(a)
		p.pairs = append(p.pairs, pair)
	}
	return &p, nil
}

// Encode returns the partner of c, or c itself when it is not connected.
// c must be an alphabet symbol.
func (p *Plugboard) Encode(c byte) byte {
	return cryptors.Symbol(int(p.table[c-'A']))
}

// Pairs returns a copy of the connected pairs.
func (p *Plugboard) Pairs() []string {
	return append([]string(nil), p.pairs...)
}

func (p *Plugboard) String() string {
	return strings.Join(p.pairs, " ")
}

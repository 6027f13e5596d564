// Package crib implements known-plaintext attacks on machine ciphertext.
//
// The attacks rest on one property of the machine: because the reflector
// has no fixed point, no symbol is ever enciphered to itself.  A guessed
// plaintext fragment (a crib) therefore cannot sit at any offset where one
// of its symbols equals the ciphertext symbol beneath it.
package crib

import (
	"bufio"
	"context"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/engine"
)

func checkLengths(ciphertext, fragment string) error {
	if len(fragment) == 0 {
		return cryptors.Invalid("empty crib")
	}
	if len(fragment) > len(ciphertext) {
		return cryptors.Invalid("crib of %d symbols is longer than the %d symbol ciphertext",
			len(fragment), len(ciphertext))
	}
	return nil
}

// noCollision reports whether text and fragment differ at every position.
func noCollision(text, fragment string) bool {
	for j := 0; j < len(fragment); j++ {
		if text[j] == fragment[j] {
			return false
		}
	}
	return true
}

// FindPossiblePositions returns, in increasing order, every offset into
// ciphertext at which fragment could have been enciphered.
func FindPossiblePositions(ciphertext, fragment string) ([]int, error) {
	if err := checkLengths(ciphertext, fragment); err != nil {
		return nil, err
	}
	m := len(fragment)
	positions := []int{}
	for i := 0; i+m <= len(ciphertext); i++ {
		if noCollision(ciphertext[i:i+m], fragment) {
			positions = append(positions, i)
		}
	}
	return positions, nil
}

// Overlay writes the crib under the ciphertext at every position, repeating
// the ciphertext line every ten rows.
func Overlay(w io.Writer, ciphertext, fragment string, positions []int) error {
	bw := bufio.NewWriter(w)
	for i, pos := range positions {
		if i%10 == 0 {
			bw.WriteString(ciphertext)
			bw.WriteByte('\n')
		}
		bw.WriteString(strings.Repeat(" ", pos))
		bw.WriteString(fragment)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Factory builds an independent machine with the rotor order, reflector
// and plugboard under test.  The attack never shares a machine between
// workers.
type Factory func() (*engine.Enigma, error)

// SearchOffsets tries every starting offset of the rotors and returns those
// under which deciphering ciphertext reproduces fragment at position.  The
// machines returned by factory must carry the assumed wiring and plugboard;
// only the starting offsets are searched.  workers <= 0 uses GOMAXPROCS.
func SearchOffsets(ctx context.Context, ciphertext, fragment string, position int,
	factory Factory, workers int) ([]cryptors.Positions, error) {
	if err := checkLengths(ciphertext, fragment); err != nil {
		return nil, err
	}
	if position < 0 || position+len(fragment) > len(ciphertext) {
		return nil, cryptors.Invalid("crib position %d is outside the ciphertext", position)
	}
	if err := cryptors.CheckText(ciphertext); err != nil {
		return nil, err
	}
	if err := cryptors.CheckText(fragment); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	prefix := ciphertext[:position+len(fragment)]
	found := make([][]cryptors.Positions, cryptors.AlphabetSize)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for first := 0; first < cryptors.AlphabetSize; first++ {
		first := first
		g.Go(func() error {
			m, err := factory()
			if err != nil {
				return err
			}
			for second := 0; second < cryptors.AlphabetSize; second++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for third := 0; third < cryptors.AlphabetSize; third++ {
					p := cryptors.Positions{first, second, third}
					if err := m.Reset(p); err != nil {
						return err
					}
					plain, err := m.EncodeMessage(prefix)
					if err != nil {
						return err
					}
					if plain[position:] == fragment {
						found[first] = append(found[first], p)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result []cryptors.Positions
	for _, f := range found {
		result = append(result, f...)
	}
	return result, nil
}

// assembly project assembly.go
package assembly

import (
	"bytes"
	"fmt"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/cryptors/rotor"
)

// State is a snapshot of the mutable part of an assembly.
type State struct {
	Positions cryptors.Positions
	Turnover  [cryptors.RotorCount]bool
}

// Assembly is the rotor stack: three cipher rotors, fastest first, and the
// reflector.  It owns the stepping of the rotors.
type Assembly struct {
	rotors    [cryptors.RotorCount]*rotor.Rotor
	reflector *rotor.Reflector
}

// New creates an assembly from exactly three distinct rotors, fastest
// first, and a reflector.
func New(rotors []*rotor.Rotor, reflector *rotor.Reflector) (*Assembly, error) {
	if len(rotors) != cryptors.RotorCount {
		return nil, cryptors.Invalid("%d rotors given, want %d", len(rotors), cryptors.RotorCount)
	}
	if reflector == nil {
		return nil, cryptors.Invalid("missing reflector")
	}
	var a Assembly
	for i, r := range rotors {
		if r == nil {
			return nil, cryptors.Invalid("missing rotor %d", i)
		}
		for _, prev := range a.rotors[:i] {
			if prev == r {
				return nil, cryptors.Invalid("rotor %d is already mounted", i)
			}
		}
		a.rotors[i] = r
	}
	a.reflector = reflector
	return &a, nil
}

// SetPositions sets the offset of every rotor.  Turnover flags are not
// touched; see ClearTurnovers.
func (a *Assembly) SetPositions(p cryptors.Positions) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for i, r := range a.rotors {
		if err := r.SetPosition(p[i]); err != nil {
			return err
		}
	}
	return nil
}

// ClearTurnovers drops any pending turnover flag.
func (a *Assembly) ClearTurnovers() {
	for _, r := range a.rotors {
		r.ConsumeTurnover()
	}
}

// Positions returns the current rotor offsets.
func (a *Assembly) Positions() cryptors.Positions {
	var p cryptors.Positions
	for i, r := range a.rotors {
		p[i] = r.Position()
	}
	return p
}

// State returns a snapshot of offsets and turnover flags.
func (a *Assembly) State() State {
	s := State{Positions: a.Positions()}
	for i, r := range a.rotors {
		s.Turnover[i] = r.Turnover()
	}
	return s
}

// Step advances the fast rotor and carries turnovers to the slower rotors
// in a single pass.  A rotor that turns over advances its neighbour once;
// the carry is not re-examined within the same step.
func (a *Assembly) Step() {
	a.rotors[0].Advance()
	for i := 0; i < len(a.rotors)-1; i++ {
		if a.rotors[i].ConsumeTurnover() {
			a.rotors[i+1].Advance()
		}
	}
}

// EncodeChar steps the rotors and sends c through the rotors, the
// reflector and back.  c must be an alphabet symbol.
func (a *Assembly) EncodeChar(c byte) byte {
	a.Step()
	for _, r := range a.rotors {
		c = r.EncodeForward(c)
	}
	c = a.reflector.Encode(c)
	for i := len(a.rotors) - 1; i >= 0; i-- {
		c = a.rotors[i].EncodeReverse(c)
	}
	return c
}

func (a *Assembly) String() string {
	var output bytes.Buffer
	for i, r := range a.rotors {
		output.WriteString(fmt.Sprintf("\trotor %d: %s\n", i, r))
	}
	output.WriteString(fmt.Sprintf("\treflector: %s\n", a.reflector))
	return output.String()
}

// Package engine is the complete cipher machine: a rotor assembly between
// two passes through the plugboard, plus the indicator protocol used to
// exchange a per-message key.
//
// An Enigma is not safe for concurrent use; every encoded symbol moves the
// rotors.  Build one machine per session.
package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/cryptors/assembly"
	"github.com/bgallie/enigma/cryptors/plugboard"
	"github.com/bgallie/enigma/cryptors/rotor"
	"github.com/bgallie/enigma/wiring"
)

const (
	// KeyLength is the length of a message key.
	KeyLength = cryptors.RotorCount
	// IndicatorLength is the length of a transmitted, doubly enciphered key.
	IndicatorLength = 2 * KeyLength
)

type Option func(*Enigma)

// WithLogger sets the logger used to trace the machine.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Enigma) {
		e.logger = logger
	}
}

type Enigma struct {
	assembly  *assembly.Assembly
	plugboard *plugboard.Plugboard
	logger    zerolog.Logger
}

// New puts an assembly and a plugboard together.
func New(a *assembly.Assembly, p *plugboard.Plugboard, opts ...Option) (*Enigma, error) {
	if a == nil {
		return nil, cryptors.Invalid("missing rotor assembly")
	}
	if p == nil {
		return nil, cryptors.Invalid("missing plugboard")
	}
	e := &Enigma{
		assembly:  a,
		plugboard: p,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Settings selects the wirings a machine is built from.
type Settings struct {
	Rotors    []string // rotor ids, fastest first
	Reflector string
	Positions cryptors.Positions
}

// Build creates a machine from the wirings held by src.
func Build(src wiring.Source, s Settings, opts ...Option) (*Enigma, error) {
	if len(s.Rotors) != cryptors.RotorCount {
		return nil, cryptors.Invalid("%d rotors selected, want %d", len(s.Rotors), cryptors.RotorCount)
	}
	rotors := make([]*rotor.Rotor, 0, cryptors.RotorCount)
	for _, id := range s.Rotors {
		permutation, notch, err := src.LoadRotor(id)
		if err != nil {
			return nil, err
		}
		r, err := rotor.New(permutation, notch)
		if err != nil {
			return nil, fmt.Errorf("rotor %s: %w", id, err)
		}
		rotors = append(rotors, r)
	}
	permutation, err := src.LoadReflector(s.Reflector)
	if err != nil {
		return nil, err
	}
	reflector, err := rotor.NewReflector(permutation)
	if err != nil {
		return nil, fmt.Errorf("reflector %s: %w", s.Reflector, err)
	}
	a, err := assembly.New(rotors, reflector)
	if err != nil {
		return nil, err
	}
	if err = a.SetPositions(s.Positions); err != nil {
		return nil, err
	}
	pairs, err := src.LoadPlugboard()
	if err != nil {
		return nil, err
	}
	p, err := plugboard.New(pairs)
	if err != nil {
		return nil, err
	}
	return New(a, p, opts...)
}

// Positions returns the current rotor offsets.
func (e *Enigma) Positions() cryptors.Positions {
	return e.assembly.Positions()
}

// State returns a snapshot of the rotor offsets and turnover flags.
func (e *Enigma) State() assembly.State {
	return e.assembly.State()
}

// SetPositions moves the rotors to p without touching turnover flags.
func (e *Enigma) SetPositions(p cryptors.Positions) error {
	return e.assembly.SetPositions(p)
}

// Reset moves the rotors to p and clears any pending turnover.
func (e *Enigma) Reset(p cryptors.Positions) error {
	if err := e.assembly.SetPositions(p); err != nil {
		return err
	}
	e.assembly.ClearTurnovers()
	return nil
}

// EncodeChar enciphers (or deciphers) one symbol and moves the rotors.
func (e *Enigma) EncodeChar(c byte) (byte, error) {
	if !cryptors.IsSymbol(c) {
		return 0, cryptors.Invalid("symbol %q is not in the alphabet", c)
	}
	return e.encode(c), nil
}

func (e *Enigma) encode(c byte) byte {
	out := e.plugboard.Encode(e.assembly.EncodeChar(e.plugboard.Encode(c)))
	if ev := e.logger.Trace(); ev.Enabled() {
		ev.Str("in", string(c)).
			Str("out", string(out)).
			Interface("state", e.State()).
			Msg("encode")
	}
	return out
}

// EncodeMessage encodes every symbol of text in order.  The text is checked
// before the rotors move, so a rejected text leaves the machine untouched.
// Encoding is its own inverse only from the same starting state.
func (e *Enigma) EncodeMessage(text string) (string, error) {
	if err := cryptors.CheckText(text); err != nil {
		return "", err
	}
	out := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = e.encode(text[i])
	}
	return string(out), nil
}

// EncryptIndicator enciphers key twice in succession from the current
// (ground) setting and then moves the rotors to key, ready for the message
// body.  The rotors keep stepping between the two copies.
func (e *Enigma) EncryptIndicator(key string) (string, error) {
	if len(key) != KeyLength {
		return "", cryptors.Invalid("message key %q must be %d symbols long", key, KeyLength)
	}
	positions, err := cryptors.ParsePositions(key)
	if err != nil {
		return "", err
	}
	ground := e.assembly.Positions()
	first, err := e.EncodeMessage(key)
	if err != nil {
		return "", err
	}
	second, err := e.EncodeMessage(key)
	if err != nil {
		return "", err
	}
	indicator := first + second
	if err = e.assembly.SetPositions(positions); err != nil {
		return "", err
	}
	e.logger.Debug().
		Stringer("ground", ground).
		Str("indicator", indicator).
		Msg("message key enciphered")
	return indicator, nil
}

// DecryptIndicator deciphers a six symbol indicator from the current
// (ground) setting.  Both halves must give the same key; a mismatch means
// the indicator was garbled or the ground setting is wrong.  On success the
// rotors are moved to the recovered key.
func (e *Enigma) DecryptIndicator(indicator string) (string, error) {
	if len(indicator) != IndicatorLength {
		return "", cryptors.Invalid("indicator %q must be %d symbols long", indicator, IndicatorLength)
	}
	ground := e.assembly.Positions()
	decoded, err := e.EncodeMessage(indicator)
	if err != nil {
		return "", err
	}
	key, repeat := decoded[:KeyLength], decoded[KeyLength:]
	if key != repeat {
		return "", cryptors.Invalid("indicator %q deciphers to %s and %s", indicator, key, repeat)
	}
	positions, err := cryptors.ParsePositions(key)
	if err != nil {
		return "", err
	}
	if err = e.assembly.SetPositions(positions); err != nil {
		return "", err
	}
	e.logger.Debug().
		Stringer("ground", ground).
		Str("indicator", indicator).
		Msg("message key recovered")
	return key, nil
}

// Encrypt runs the whole sending procedure: reset to ground, encipher the
// message key into an indicator, encipher the body under the message key.
// msg.Indicator holds the plain three symbol key.
func (e *Enigma) Encrypt(ground cryptors.Positions, msg Message) (Message, error) {
	if err := cryptors.CheckText(msg.Text); err != nil {
		return Message{}, err
	}
	if err := e.Reset(ground); err != nil {
		return Message{}, err
	}
	indicator, err := e.EncryptIndicator(msg.Indicator)
	if err != nil {
		return Message{}, err
	}
	text, err := e.EncodeMessage(msg.Text)
	if err != nil {
		return Message{}, err
	}
	return Message{Indicator: indicator, Text: text}, nil
}

// Decrypt is the receiving side of Encrypt.  The returned message holds the
// recovered three symbol key and the plaintext.
func (e *Enigma) Decrypt(ground cryptors.Positions, msg Message) (Message, error) {
	if err := cryptors.CheckText(msg.Text); err != nil {
		return Message{}, err
	}
	if err := e.Reset(ground); err != nil {
		return Message{}, err
	}
	key, err := e.DecryptIndicator(msg.Indicator)
	if err != nil {
		return Message{}, err
	}
	text, err := e.EncodeMessage(msg.Text)
	if err != nil {
		return Message{}, err
	}
	return Message{Indicator: key, Text: text}, nil
}

func (e *Enigma) String() string {
	return fmt.Sprintf("enigma{\n%s\tplugboard: %s\n}", e.assembly, e.plugboard)
}

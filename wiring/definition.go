package wiring

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bgallie/enigma/cryptors"
)

// Definition is the YAML form of a catalog.
//
//	rotors:
//	  - id: I
//	    wiring: EKMFLGDQVZNTOWYHXUSPAIBRCJ
//	    notch: Q
//	reflectors:
//	  - id: B
//	    wiring: YRUHQSLDPXNGOKMIEBFZCWVJAT
//	plugboard: [AB, CD]
type Definition struct {
	Rotors     []RotorEntry     `yaml:"rotors"`
	Reflectors []ReflectorEntry `yaml:"reflectors"`
	Plugboard  []string         `yaml:"plugboard"`
}

// RotorEntry describes one cipher rotor.
type RotorEntry struct {
	ID     string `yaml:"id"`
	Wiring string `yaml:"wiring"`
	Notch  string `yaml:"notch"`
}

// ReflectorEntry describes one reflector.
type ReflectorEntry struct {
	ID     string `yaml:"id"`
	Wiring string `yaml:"wiring"`
}

// ParseDefinition decodes a YAML definition into a catalog.
func ParseDefinition(r io.Reader) (*Catalog, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", cryptors.ErrValidation, err)
	}
	return def.Catalog()
}

// Catalog converts the definition, checking record formats.
func (def Definition) Catalog() (*Catalog, error) {
	c := NewCatalog()
	for _, r := range def.Rotors {
		if len(r.Notch) != 1 {
			return nil, cryptors.Invalid("rotor %s: notch %q must be a single symbol", r.ID, r.Notch)
		}
		if err := c.AddRotor(r.ID, r.Wiring, r.Notch[0]); err != nil {
			return nil, err
		}
	}
	for _, r := range def.Reflectors {
		if err := c.AddReflector(r.ID, r.Wiring); err != nil {
			return nil, err
		}
	}
	if len(def.Plugboard) > cryptors.MaxPlugboardPairs {
		return nil, cryptors.Invalid("%d plugboard pairs given, at most %d allowed",
			len(def.Plugboard), cryptors.MaxPlugboardPairs)
	}
	c.SetPlugboard(def.Plugboard)
	return c, nil
}

// Package wiring loads rotor, reflector and plugboard definitions and hands
// them to the machine builder.
package wiring

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bgallie/enigma/cryptors"
)

// NoNotch is the notch placeholder used by reflector-only records.
const NoNotch = "_"

//go:embed rotors.txt
var builtinRotors string

// Source provides wiring definitions to the machine builder.
type Source interface {
	LoadRotor(id string) (permutation string, notch byte, err error)
	LoadReflector(id string) (permutation string, err error)
	LoadPlugboard() ([]string, error)
}

type record struct {
	permutation string
	notch       byte // 0 for reflector-only records
}

// Catalog is an in-memory Source.
type Catalog struct {
	records   map[string]record
	plugboard []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{records: make(map[string]record)}
}

// Default returns the catalog of historical rotors I to V and reflectors
// A, B and C, with an empty plugboard.
func Default() *Catalog {
	c, err := ParseRotors(strings.NewReader(builtinRotors))
	if err != nil {
		panic(fmt.Sprintf("wiring: builtin catalog: %v", err))
	}
	return c
}

// AddRotor adds a rotor record.
func (c *Catalog) AddRotor(id, permutation string, notch byte) error {
	if !cryptors.IsSymbol(notch) {
		return cryptors.Invalid("rotor %s: notch %q is not in the alphabet", id, notch)
	}
	return c.add(id, record{permutation: permutation, notch: notch})
}

// AddReflector adds a reflector-only record.
func (c *Catalog) AddReflector(id, permutation string) error {
	return c.add(id, record{permutation: permutation})
}

func (c *Catalog) add(id string, rec record) error {
	if id == "" {
		return cryptors.Invalid("empty wiring id")
	}
	if _, dup := c.records[id]; dup {
		return cryptors.Invalid("wiring %s is defined twice", id)
	}
	if len(rec.permutation) != cryptors.AlphabetSize {
		return cryptors.Invalid("wiring %s has %d symbols, want %d", id, len(rec.permutation), cryptors.AlphabetSize)
	}
	if err := cryptors.CheckText(rec.permutation); err != nil {
		return fmt.Errorf("wiring %s: %w", id, err)
	}
	c.records[id] = rec
	return nil
}

// SetPlugboard replaces the plugboard pairs returned by LoadPlugboard.
func (c *Catalog) SetPlugboard(pairs []string) {
	c.plugboard = append([]string(nil), pairs...)
}

// IDs returns the sorted ids of all records.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Catalog) LoadRotor(id string) (string, byte, error) {
	rec, ok := c.records[id]
	if !ok {
		return "", 0, fmt.Errorf("rotor %s: %w (known: %s)", id, cryptors.ErrNotFound, strings.Join(c.IDs(), ", "))
	}
	if rec.notch == 0 {
		return "", 0, cryptors.Invalid("rotor %s has no notch", id)
	}
	return rec.permutation, rec.notch, nil
}

func (c *Catalog) LoadReflector(id string) (string, error) {
	rec, ok := c.records[id]
	if !ok {
		return "", fmt.Errorf("reflector %s: %w (known: %s)", id, cryptors.ErrNotFound, strings.Join(c.IDs(), ", "))
	}
	return rec.permutation, nil
}

func (c *Catalog) LoadPlugboard() ([]string, error) {
	return append([]string(nil), c.plugboard...), nil
}

// ParseRotors reads ID:PERMUTATION:NOTCH records.  Blank lines and lines
// starting with # are skipped.
func ParseRotors(r io.Reader) (*Catalog, error) {
	c := NewCatalog()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != 3 {
			return nil, cryptors.Invalid("line %d: want ID:PERMUTATION:NOTCH, got %q", lineNo, line)
		}
		id, permutation, notch := fields[0], fields[1], fields[2]
		var err error
		switch {
		case notch == NoNotch:
			err = c.AddReflector(id, permutation)
		case len(notch) == 1:
			err = c.AddRotor(id, permutation, notch[0])
		default:
			err = cryptors.Invalid("notch %q must be a single symbol or %s", notch, NoNotch)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParsePlugboard reads one pair of symbols per line.
func ParsePlugboard(r io.Reader) ([]string, error) {
	var pairs []string
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(line) != 2 || cryptors.CheckText(line) != nil {
			return nil, cryptors.Invalid("line %d: plugboard pair %q must be two symbols", lineNo, line)
		}
		pairs = append(pairs, line)
		if len(pairs) > cryptors.MaxPlugboardPairs {
			return nil, cryptors.Invalid("line %d: more than %d plugboard pairs", lineNo, cryptors.MaxPlugboardPairs)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// LoadFile reads a catalog from path.  Files ending in .yaml or .yml hold a
// machine definition, anything else holds ID:PERMUTATION:NOTCH records.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading wiring %s: %w", path, err)
	}
	defer f.Close()

	var c *Catalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		c, err = ParseDefinition(f)
	default:
		c, err = ParseRotors(f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing wiring %s: %w", path, err)
	}
	return c, nil
}

// LoadPlugboardFile reads plugboard pairs from path.
func LoadPlugboardFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading plugboard %s: %w", path, err)
	}
	defer f.Close()
	pairs, err := ParsePlugboard(f)
	if err != nil {
		return nil, fmt.Errorf("parsing plugboard %s: %w", path, err)
	}
	return pairs, nil
}

package engine_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/engine"
	"github.com/bgallie/enigma/wiring"
)

const message = "DIESISTEINTESTTESTTEST"

var plugs = []string{"AQ", "BJ", "CD", "EW", "FZ", "GM", "HO", "IK", "LX", "NT"}

func newMachine(t *testing.T, p cryptors.Positions, pairs []string, opts ...engine.Option) *engine.Enigma {
	catalog := wiring.Default()
	catalog.SetPlugboard(pairs)
	e, err := engine.Build(catalog, engine.Settings{
		Rotors:    []string{"I", "II", "III"},
		Reflector: "B",
		Positions: p,
	}, opts...)
	require.NoError(t, err)
	return e
}

func TestEncodeChar_KnownValue(t *testing.T) {
	e := newMachine(t, cryptors.Positions{0, 0, 0}, nil)
	out, err := e.EncodeChar('A')
	require.NoError(t, err)
	assert.Equal(t, byte('E'), out)
	assert.Equal(t, cryptors.Positions{1, 0, 0}, e.Positions())

	e = newMachine(t, cryptors.Positions{0, 0, 0}, nil)
	out, err = e.EncodeChar('E')
	require.NoError(t, err)
	assert.Equal(t, byte('A'), out)
}

func TestEncodeChar_Invalid(t *testing.T) {
	e := newMachine(t, cryptors.Positions{0, 0, 0}, plugs)
	for _, c := range []byte{'a', ' ', '1', 0} {
		_, err := e.EncodeChar(c)
		assert.ErrorIs(t, err, cryptors.ErrValidation)
	}
	assert.Equal(t, cryptors.Positions{0, 0, 0}, e.Positions())
}

func TestEncodeMessage_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		positions cryptors.Positions
		pairs     []string
		text      string
	}{
		{"default settings", cryptors.Positions{0, 0, 0}, nil, message},
		{"with plugboard", cryptors.Positions{0, 0, 0}, plugs, message},
		{"offsets", cryptors.Positions{7, 8, 21}, plugs, message},
		{"last offsets", cryptors.Positions{25, 25, 25}, []string{"AZ"}, message},
		{"long text", cryptors.Positions{15, 3, 20}, plugs, strings.Repeat("ABCDEFGHIJKLMNOPQRSTUVWXYZ", 40)},
		{"empty text", cryptors.Positions{1, 2, 3}, plugs, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cypher, err := newMachine(t, tt.positions, tt.pairs).EncodeMessage(tt.text)
			require.NoError(t, err)
			require.Len(t, cypher, len(tt.text))
			output, err := newMachine(t, tt.positions, tt.pairs).EncodeMessage(cypher)
			require.NoError(t, err)
			assert.Equal(t, tt.text, output)
		})
	}
}

func TestEncodeMessage_NotReusable(t *testing.T) {
	e := newMachine(t, cryptors.Positions{0, 0, 0}, plugs)
	first, err := e.EncodeMessage(message)
	require.NoError(t, err)
	second, err := e.EncodeMessage(message)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, e.Reset(cryptors.Positions{0, 0, 0}))
	again, err := e.EncodeMessage(message)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestEncodeMessage_InvalidLeavesStateAlone(t *testing.T) {
	e := newMachine(t, cryptors.Positions{4, 5, 6}, plugs)
	_, err := e.EncodeMessage("HELLO WORLD")
	assert.ErrorIs(t, err, cryptors.ErrValidation)
	assert.Equal(t, cryptors.Positions{4, 5, 6}, e.Positions())
}

func TestNoSelfMapping(t *testing.T) {
	e := newMachine(t, cryptors.Positions{0, 0, 0}, plugs)
	for a := 0; a < cryptors.AlphabetSize; a++ {
		for b := 0; b < cryptors.AlphabetSize; b++ {
			for c := 0; c < cryptors.AlphabetSize; c++ {
				p := cryptors.Positions{a, b, c}
				for i := 0; i < cryptors.AlphabetSize; i++ {
					in := cryptors.Symbol(i)
					require.NoError(t, e.Reset(p))
					out, err := e.EncodeChar(in)
					require.NoError(t, err)
					if out == in {
						t.Fatalf("%c enciphered to itself from %s", in, p)
					}
				}
			}
		}
	}
}

func TestSteppingPeriod(t *testing.T) {
	e := newMachine(t, cryptors.Positions{9, 0, 0}, nil)
	turnovers := 0
	for i := 0; i < cryptors.AlphabetSize; i++ {
		before := e.Positions()
		_, err := e.EncodeChar('X')
		require.NoError(t, err)
		if e.Positions()[1] != before[1] {
			turnovers++
			assert.Equal(t, 7, e.Positions()[0])
		}
	}
	assert.Equal(t, 9, e.Positions()[0])
	assert.Equal(t, 1, turnovers)
}

func TestSetPositions(t *testing.T) {
	e := newMachine(t, cryptors.Positions{0, 0, 0}, nil)
	require.NoError(t, e.SetPositions(cryptors.Positions{1, 2, 3}))
	assert.Equal(t, cryptors.Positions{1, 2, 3}, e.Positions())
	assert.ErrorIs(t, e.SetPositions(cryptors.Positions{1, 2, 26}), cryptors.ErrValidation)
	assert.ErrorIs(t, e.Reset(cryptors.Positions{-1, 2, 3}), cryptors.ErrValidation)
	assert.Equal(t, cryptors.Positions{1, 2, 3}, e.Positions())
}

func TestIndicator_RoundTrip(t *testing.T) {
	ground := cryptors.Positions{5, 11, 23}
	for _, key := range []string{"QRS", "AAA", "ZZZ", "EQD"} {
		t.Run(key, func(t *testing.T) {
			sender := newMachine(t, ground, plugs)
			indicator, err := sender.EncryptIndicator(key)
			require.NoError(t, err)
			require.Len(t, indicator, engine.IndicatorLength)
			want, err := cryptors.ParsePositions(key)
			require.NoError(t, err)
			assert.Equal(t, want, sender.Positions())

			receiver := newMachine(t, ground, plugs)
			got, err := receiver.DecryptIndicator(indicator)
			require.NoError(t, err)
			assert.Equal(t, key, got)
			assert.Equal(t, want, receiver.Positions())
		})
	}
}

func TestDecryptIndicator_Mismatch(t *testing.T) {
	ground := cryptors.Positions{0, 0, 0}
	indicator, err := newMachine(t, ground, plugs).EncryptIndicator("QRS")
	require.NoError(t, err)

	last := byte('A')
	if indicator[5] == 'A' {
		last = 'B'
	}
	garbled := indicator[:5] + string(last)
	e := newMachine(t, ground, plugs)
	_, err = e.DecryptIndicator(garbled)
	assert.ErrorIs(t, err, cryptors.ErrValidation)
}

func TestIndicator_Invalid(t *testing.T) {
	e := newMachine(t, cryptors.Positions{0, 0, 0}, nil)
	for _, key := range []string{"", "QR", "QRST", "qrs", "Q1S"} {
		_, err := e.EncryptIndicator(key)
		assert.ErrorIs(t, err, cryptors.ErrValidation, "key %q", key)
	}
	for _, indicator := range []string{"", "ABCDE", "ABCDEFG", "abcdef"} {
		_, err := e.DecryptIndicator(indicator)
		assert.ErrorIs(t, err, cryptors.ErrValidation, "indicator %q", indicator)
	}
	assert.Equal(t, cryptors.Positions{0, 0, 0}, e.Positions())
}

func TestEncryptDecrypt(t *testing.T) {
	ground := cryptors.Positions{7, 8, 21}
	plain := engine.NewMessage("QRS", "Wetterbericht null sechs null null. Wind null drei null, Staerke vier.")

	sent, err := newMachine(t, cryptors.Positions{0, 0, 0}, plugs).Encrypt(ground, plain)
	require.NoError(t, err)
	assert.Len(t, sent.Indicator, engine.IndicatorLength)
	assert.Len(t, sent.Text, len(plain.Text))
	assert.NotEqual(t, plain.Text, sent.Text)

	received, err := newMachine(t, cryptors.Positions{3, 3, 3}, plugs).Decrypt(ground, sent)
	require.NoError(t, err)
	assert.Equal(t, plain, received)
}

func TestEncrypt_InvalidText(t *testing.T) {
	e := newMachine(t, cryptors.Positions{0, 0, 0}, nil)
	_, err := e.Encrypt(cryptors.Positions{}, engine.Message{Indicator: "QRS", Text: "not normalized"})
	assert.ErrorIs(t, err, cryptors.ErrValidation)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name     string
		settings engine.Settings
		pairs    []string
		wantErr  error
	}{
		{"unknown rotor", engine.Settings{Rotors: []string{"I", "IX", "III"}, Reflector: "B"}, nil, cryptors.ErrNotFound},
		{"unknown reflector", engine.Settings{Rotors: []string{"I", "II", "III"}, Reflector: "Z"}, nil, cryptors.ErrNotFound},
		{"two rotors", engine.Settings{Rotors: []string{"I", "II"}, Reflector: "B"}, nil, cryptors.ErrValidation},
		{"reflector used as rotor", engine.Settings{Rotors: []string{"I", "II", "B"}, Reflector: "B"}, nil, cryptors.ErrValidation},
		{"rotor used as reflector", engine.Settings{Rotors: []string{"I", "II", "III"}, Reflector: "IV"}, nil, cryptors.ErrValidation},
		{"bad position", engine.Settings{Rotors: []string{"I", "II", "III"}, Reflector: "B", Positions: cryptors.Positions{0, 0, 30}}, nil, cryptors.ErrValidation},
		{"eleven plugs", engine.Settings{Rotors: []string{"I", "II", "III"}, Reflector: "B"}, append(plugs, "UV"), cryptors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := wiring.Default()
			catalog.SetPlugboard(tt.pairs)
			e, err := engine.Build(catalog, tt.settings)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, e)
		})
	}
}

func TestBuild_RepeatedWiringSymbol(t *testing.T) {
	catalog := wiring.NewCatalog()
	require.NoError(t, catalog.AddRotor("I", "EKMFLGDQVZNTOWYHXUSPAIBRCJ", 'Q'))
	require.NoError(t, catalog.AddRotor("II", "AJDKSIRUXBLHWTMCQGZNPYFVOE", 'E'))
	require.NoError(t, catalog.AddRotor("X", "AJDKSIRUXBLHWTMCQGZNPYFVOA", 'E'))
	require.NoError(t, catalog.AddReflector("B", "YRUHQSLDPXNGOKMIEBFZCWVJAT"))
	e, err := engine.Build(catalog, engine.Settings{Rotors: []string{"I", "II", "X"}, Reflector: "B"})
	assert.ErrorIs(t, err, cryptors.ErrValidation)
	assert.Nil(t, e)
}

func TestNew_Invalid(t *testing.T) {
	e, err := engine.New(nil, nil)
	assert.ErrorIs(t, err, cryptors.ErrValidation)
	assert.Nil(t, e)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	e := newMachine(t, cryptors.Positions{0, 0, 0}, nil, engine.WithLogger(logger))
	_, err := e.EncryptIndicator("QRS")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "message key enciphered")
	assert.NotContains(t, buf.String(), `"message":"encode"`)
}

func TestWithLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	e := newMachine(t, cryptors.Positions{6, 0, 0}, nil, engine.WithLogger(logger))
	_, err := e.EncodeChar('A')
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"encode"`)
	assert.Contains(t, buf.String(), `"state":{"Positions":[7,1,0],"Turnover":[false,false,false]}`)
	assert.Equal(t, e.State().Positions, e.Positions())
}

func TestMessage(t *testing.T) {
	m := engine.NewMessage("QRS", "Wetter, bericht!")
	assert.Equal(t, "WETTERBERICHT", m.Text)
	assert.Equal(t, "indicator: QRS\ntext: WETTERBERICHT", m.String())
}

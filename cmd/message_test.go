package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bgallie/filters/pem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgallie/enigma/config"
	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/engine"
)

func TestWriteMessage_ReadMessage(t *testing.T) {
	msg := engine.Message{Indicator: "XQZVMB", Text: strings.Repeat("WETTERBERICHT", 20)}
	tests := []struct {
		name       string
		layout     armour
		wantPrefix string
	}{
		{"plain", armour{}, "XQZVMB\n"},
		{"pem", armour{usePem: true}, "-----BEGIN ENIGMA MESSAGE-----\n"},
		{"pem compressed", armour{usePem: true, compress: true}, "-----BEGIN ENIGMA MESSAGE-----\n"},
		{"ascii85", armour{useASCII85: true}, "+ENIGMA|a|false|XQZVMB\n"},
		{"ascii85 compressed", armour{useASCII85: true, compress: true}, "+ENIGMA|a|true|XQZVMB\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeMessage(&buf, msg, tt.layout))
			assert.True(t, strings.HasPrefix(buf.String(), tt.wantPrefix), buf.String())

			got, err := readMessage(&buf)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
		})
	}
}

func TestReadMessage_Plain(t *testing.T) {
	got, err := readMessage(strings.NewReader("xqz vmb\nWetter bericht\nnull\n"))
	require.NoError(t, err)
	assert.Equal(t, engine.Message{Indicator: "XQZVMB", Text: "WETTERBERICHTNULL"}, got)

	got, err = readMessage(strings.NewReader("XQZVMB\n"))
	require.NoError(t, err)
	assert.Equal(t, engine.Message{Indicator: "XQZVMB", Text: ""}, got)
}

func TestReadMessage_Errors(t *testing.T) {
	noIndicator, err := io.ReadAll(pem.ToPem(strings.NewReader("WETTERBERICHT"), pem.Block{Type: pemType}))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
	}{
		{"pem without indicator", string(noIndicator)},
		{"unknown encoding", "+ENIGMA|b|false|XQZVMB\nABC\n"},
		{"short header", "+ENIGMA|a|XQZVMB\nABC\n"},
		{"foreign header", "+TNT2|a|false|XQZVMB\nABC\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readMessage(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, cryptors.ErrValidation)
		})
	}
}

func TestWriteMessage_InvalidArmour(t *testing.T) {
	msg := engine.Message{Indicator: "XQZVMB", Text: "WETTERBERICHT"}
	for _, layout := range []armour{
		{usePem: true, useASCII85: true},
		{compress: true},
	} {
		var buf bytes.Buffer
		err := writeMessage(&buf, msg, layout)
		assert.ErrorIs(t, err, cryptors.ErrValidation)
		assert.Empty(t, buf.String())
	}
}

func useSettings(t *testing.T, s config.Settings) {
	saved := settings
	settings = s
	t.Cleanup(func() {
		settings = saved
	})
}

func TestLoadCatalog_Plugboard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugboard.txt")
	require.NoError(t, os.WriteFile(path, []byte("# cables\nAQ\nBJ\n"), 0o600))

	tests := []struct {
		name     string
		settings config.Settings
		want     []string
	}{
		{"none", config.Settings{}, nil},
		{"pairs", config.Settings{Plugboard: []string{"CD"}}, []string{"CD"}},
		{"file", config.Settings{PlugboardFile: path}, []string{"AQ", "BJ"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useSettings(t, tt.settings)
			catalog, err := loadCatalog()
			require.NoError(t, err)
			pairs, err := catalog.LoadPlugboard()
			require.NoError(t, err)
			assert.Equal(t, tt.want, pairs)
		})
	}
}

func TestLoadCatalog_MissingPlugboardFile(t *testing.T) {
	useSettings(t, config.Settings{PlugboardFile: filepath.Join(t.TempDir(), "missing.txt")})
	_, err := loadCatalog()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildMachine_PlugboardFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugboard.txt")
	require.NoError(t, os.WriteFile(path, []byte("AE\n"), 0o600))
	useSettings(t, config.Settings{
		Rotors:        []string{"I", "II", "III"},
		Reflector:     "B",
		PlugboardFile: path,
	})

	machine, err := buildMachine(cryptors.Positions{0, 0, 0})
	require.NoError(t, err)
	// without cables A enciphers to E at AAA; the A-E cable swaps both ends
	out, err := machine.EncodeChar('E')
	require.NoError(t, err)
	assert.Equal(t, byte('A'), out)
}

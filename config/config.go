package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/bgallie/enigma/cryptors"
)

// Settings are the machine settings shared by all commands.  They come from
// the config file, ENIGMA_* environment variables and command line flags.
type Settings struct {
	Rotors    []string `mapstructure:"rotors" validate:"len=3,dive,required"`
	Reflector string   `mapstructure:"reflector" validate:"required"`
	Positions string   `mapstructure:"positions" validate:"len=3,symbols"`
	Ground    string   `mapstructure:"ground" validate:"len=3,symbols"`
	Plugboard []string `mapstructure:"plugboard" validate:"max=10,dive,len=2,symbols"`
	// PlugboardFile names a file of pairs, one per line.  It cannot be
	// combined with Plugboard.
	PlugboardFile string `mapstructure:"plugboard-file"`
	Wiring        string `mapstructure:"wiring"`
	LogLevel      string `mapstructure:"log-level"`
	LogOutput     string `mapstructure:"log-output"`
}

// SetDefaults registers the default machine: rotors I, II, III, reflector
// B, no plugboard, everything at A.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("rotors", []string{"I", "II", "III"})
	v.SetDefault("reflector", "B")
	v.SetDefault("positions", "AAA")
	v.SetDefault("ground", "AAA")
	v.SetDefault("plugboard", []string{})
	v.SetDefault("plugboard-file", "")
	v.SetDefault("wiring", "")
	v.SetDefault("log-level", "warn")
	v.SetDefault("log-output", "console")
}

// NewValidator returns a validator that knows the "symbols" tag.
func NewValidator() (*validator.Validate, error) {
	validate := validator.New()
	if err := validate.RegisterValidation("symbols", validateSymbols); err != nil {
		return nil, err
	}
	return validate, nil
}

func validateSymbols(fl validator.FieldLevel) bool {
	return cryptors.CheckText(fl.Field().String()) == nil
}

// Load reads the settings held by v and validates them.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("%w: %v", cryptors.ErrValidation, err)
	}
	s.Positions = strings.ToUpper(s.Positions)
	s.Ground = strings.ToUpper(s.Ground)
	for i, pair := range s.Plugboard {
		s.Plugboard[i] = strings.ToUpper(pair)
	}
	validate, err := NewValidator()
	if err != nil {
		return s, err
	}
	if err = validate.Struct(s); err != nil {
		return s, fmt.Errorf("%w: %v", cryptors.ErrValidation, err)
	}
	if s.PlugboardFile != "" && len(s.Plugboard) > 0 {
		return s, cryptors.Invalid("plugboard and plugboard-file cannot both be set")
	}
	return s, nil
}

// PositionsValue returns the configured rotor start offsets.
func (s Settings) PositionsValue() (cryptors.Positions, error) {
	return cryptors.ParsePositions(s.Positions)
}

// GroundValue returns the configured ground setting.
func (s Settings) GroundValue() (cryptors.Positions, error) {
	return cryptors.ParsePositions(s.Ground)
}

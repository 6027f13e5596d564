/*
Copyright © 2021 Billy G. Allie <bill.allie@defiant.mug.org>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bgallie/enigma/config"
	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/engine"
	"github.com/bgallie/enigma/logging"
	"github.com/bgallie/enigma/wiring"
)

var (
	cfgFile        string
	inputFileName  string
	outputFileName string
	settings       config.Settings
	logger                = zerolog.Nop()
	Version        string = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "enigma",
	Short:   "A three rotor cipher machine",
	Long:    `enigma enciphers and deciphers text on a three rotor, reflector and plugboard cipher machine and searches ciphertext for cribs.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		l, err := logging.Provide(logging.Config{
			LogOutput: settings.LogOutput,
			LogLevel:  settings.LogLevel,
		})
		if err != nil {
			return err
		}
		logger = *l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.enigma.yaml)")
	flags.StringVarP(&inputFileName, "inputFile", "i", "-", "Name of the file to read.")
	flags.StringVarP(&outputFileName, "outputFile", "o", "-", "Name of the file to write.")
	flags.StringSliceP("rotors", "r", nil, "rotor ids, fastest rotor first (default I,II,III)")
	flags.String("reflector", "", "reflector id (default B)")
	flags.StringP("positions", "s", "", "rotor start positions for the encode command, e.g. QRS")
	flags.StringP("ground", "g", "", "ground setting used to encipher message keys")
	flags.StringSliceP("plugboard", "p", nil, "plugboard pairs, e.g. AB,CD")
	flags.String("plugboard-file", "", "file of plugboard pairs, one per line")
	flags.String("wiring", "", "rotor wiring file (text records or YAML); default is the builtin catalog")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("log-output", "", "log output: console, stdout, stderr, json")
	for _, name := range []string{"rotors", "reflector", "positions", "ground", "plugboard", "plugboard-file", "wiring", "log-level", "log-output"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".enigma" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".enigma")
	}

	viper.SetEnvPrefix("ENIGMA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadCatalog returns the wiring catalog named by the settings with the
// configured plugboard.
func loadCatalog() (*wiring.Catalog, error) {
	catalog := wiring.Default()
	if settings.Wiring != "" {
		var err error
		catalog, err = wiring.LoadFile(settings.Wiring)
		if err != nil {
			return nil, err
		}
	}
	switch {
	case settings.PlugboardFile != "":
		pairs, err := wiring.LoadPlugboardFile(settings.PlugboardFile)
		if err != nil {
			return nil, err
		}
		catalog.SetPlugboard(pairs)
	case len(settings.Plugboard) > 0:
		catalog.SetPlugboard(settings.Plugboard)
	}
	return catalog, nil
}

// buildMachine creates a machine from the settings, with the rotors at
// positions.
func buildMachine(positions cryptors.Positions) (*engine.Enigma, error) {
	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Strs("rotors", settings.Rotors).
		Str("reflector", settings.Reflector).
		Strs("plugboard", settings.Plugboard).
		Msg("building machine")
	return engine.Build(catalog, engine.Settings{
		Rotors:    settings.Rotors,
		Reflector: settings.Reflector,
		Positions: positions,
	}, engine.WithLogger(logger))
}

/*
getInputAndOutputFiles will return the input and output files to use while
encrypting/decrypting data.  If input and/or output files names were given,
then those files will be opened.  Otherwise stdin and stdout are used.
*/
func getInputAndOutputFiles() (*os.File, *os.File) {
	var fin *os.File
	var err error

	if len(inputFileName) > 0 && inputFileName != "-" {
		fin, err = os.Open(inputFileName)
		cobra.CheckErr(err)
	} else {
		fin = os.Stdin
	}

	var fout *os.File

	if len(outputFileName) > 0 && outputFileName != "-" {
		fout, err = os.Create(outputFileName)
		cobra.CheckErr(err)
	} else {
		fout = os.Stdout
	}
	return fin, fout
}

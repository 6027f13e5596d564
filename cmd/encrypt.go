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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/bgallie/enigma/engine"
)

var (
	usePem      bool
	useASCII85  bool
	compression bool
)

// encryptCmd represents the encrypt command
var encryptCmd = &cobra.Command{
	Use:   "encrypt [message key]",
	Short: "Encrypt plaintext under a message key",
	Long: `Encrypt plaintext under a three letter message key.  The key is enciphered
twice at the ground setting to form the indicator, then the text is enciphered
starting at the key.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		encrypt(args)
	},
}

func init() {
	rootCmd.AddCommand(encryptCmd)
	encryptCmd.Flags().BoolVarP(&usePem, "usePem", "P", false, "write the message as a PEM block")
	encryptCmd.Flags().BoolVarP(&useASCII85, "useASCII85", "a", false, "write the message body using ASCII85 encoding")
	encryptCmd.Flags().BoolVarP(&compression, "compress", "c", false, "compress the message body using flate (needs -P or -a)")
}

// messageKey obtains the message key from either:
// 1. The entered command line
// 2. The 'ENIGMA_KEY' environment variable
// 3. User input from the terminal
func messageKey(args []string) string {
	var key string
	if len(args) > 0 {
		key = args[0]
	} else if viper.IsSet("key") {
		key = viper.GetString("key")
	} else if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "Enter the message key: ")
		byteKey, err := term.ReadPassword(int(os.Stdin.Fd()))
		cobra.CheckErr(err)
		fmt.Fprintln(os.Stderr, "")
		key = string(byteKey)
	}

	if len(key) == 0 {
		cobra.CheckErr("You must supply a message key.")
	}
	return strings.ToUpper(key)
}

func encrypt(args []string) {
	layout := armour{usePem: usePem, useASCII85: useASCII85, compress: compression}
	cobra.CheckErr(layout.check())
	key := messageKey(args)
	ground, err := settings.GroundValue()
	cobra.CheckErr(err)
	machine, err := buildMachine(ground)
	cobra.CheckErr(err)

	fin, fout := getInputAndOutputFiles()
	defer fout.Close()
	text, err := readText(fin)
	cobra.CheckErr(err)

	msg, err := machine.Encrypt(ground, engine.Message{Indicator: key, Text: text})
	cobra.CheckErr(err)
	logger.Info().
		Str("indicator", msg.Indicator).
		Int("length", len(msg.Text)).
		Msg("message encrypted")
	cobra.CheckErr(writeMessage(fout, msg, layout))
}

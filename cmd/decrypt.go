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
	"github.com/spf13/cobra"
)

// decryptCmd represents the decrypt command
var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt a message produced by encrypt",
	Long: `Decrypt a message produced by encrypt.  The indicator is deciphered at the
ground setting; both halves must give the same message key.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		decrypt()
	},
}

func init() {
	rootCmd.AddCommand(decryptCmd)
}

func decrypt() {
	ground, err := settings.GroundValue()
	cobra.CheckErr(err)
	machine, err := buildMachine(ground)
	cobra.CheckErr(err)

	fin, fout := getInputAndOutputFiles()
	defer fout.Close()
	msg, err := readMessage(fin)
	cobra.CheckErr(err)

	plain, err := machine.Decrypt(ground, msg)
	cobra.CheckErr(err)
	logger.Info().
		Str("key", plain.Indicator).
		Int("length", len(plain.Text)).
		Msg("message decrypted")
	cobra.CheckErr(writeText(fout, plain.Text))
}

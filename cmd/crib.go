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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/bgallie/enigma/crib"
	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/engine"
	"github.com/bgallie/enigma/wiring"
)

var (
	showOverlay bool
	search      bool
	workers     int
)

// cribCmd represents the crib command
var cribCmd = &cobra.Command{
	Use:   "crib <crib>",
	Short: "Find where a guessed plaintext can sit in a message",
	Long: `List every offset of a message body at which the crib could have been
enciphered.  No letter is ever enciphered to itself, so offsets where the crib
and the ciphertext share a letter are ruled out.

With --search, the message key is searched at the first possible offset using
the configured rotor order and reflector and an empty plugboard.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCrib(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(cribCmd)
	cribCmd.Flags().BoolVar(&showOverlay, "show", false, "print the crib under the ciphertext at every possible offset")
	cribCmd.Flags().BoolVar(&search, "search", false, "search rotor start positions at the first possible offset")
	cribCmd.Flags().IntVar(&workers, "workers", 0, "number of search workers (default GOMAXPROCS)")
}

func runCrib(ctx context.Context, fragment string) {
	fragment = cryptors.Normalize(fragment)
	fin, fout := getInputAndOutputFiles()
	defer fout.Close()
	msg, err := readMessage(fin)
	cobra.CheckErr(err)

	positions, err := crib.FindPossiblePositions(msg.Text, fragment)
	cobra.CheckErr(err)
	if showOverlay {
		cobra.CheckErr(crib.Overlay(fout, msg.Text, fragment, positions))
	}
	fmt.Fprintf(fout, "possible positions: %d %v\n", len(positions), positions)
	if !search || len(positions) == 0 {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	catalog, err := loadCatalog()
	cobra.CheckErr(err)
	catalog.SetPlugboard(nil)
	keys, err := crib.SearchOffsets(ctx, msg.Text, fragment, positions[0], machineFactory(catalog), workers)
	cobra.CheckErr(err)
	logger.Info().
		Int("position", positions[0]).
		Int("candidates", len(keys)).
		Msg("search finished")
	for _, k := range keys {
		fmt.Fprintln(fout, k)
	}
}

func machineFactory(src wiring.Source) crib.Factory {
	return func() (*engine.Enigma, error) {
		return engine.Build(src, engine.Settings{
			Rotors:    settings.Rotors,
			Reflector: settings.Reflector,
		})
	}
}

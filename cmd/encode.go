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

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:     "encode",
	Aliases: []string{"decode"},
	Short:   "Run text through the machine from the start positions",
	Long: `Run text through the machine starting at --positions, with no indicator.
The machine is its own inverse, so encode also decodes when started at the
same positions.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		encode()
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}

func encode() {
	positions, err := settings.PositionsValue()
	cobra.CheckErr(err)
	machine, err := buildMachine(positions)
	cobra.CheckErr(err)

	fin, fout := getInputAndOutputFiles()
	defer fout.Close()
	text, err := readText(fin)
	cobra.CheckErr(err)

	out, err := machine.EncodeMessage(text)
	cobra.CheckErr(err)
	logger.Info().
		Stringer("start", positions).
		Stringer("end", machine.Positions()).
		Int("length", len(out)).
		Msg("text encoded")
	cobra.CheckErr(writeText(fout, out))
}

// Package expand contains the command printing the configurations of a scan
// file without submitting anything.
package expand

import (
	"fmt"

	"github.com/ohsu-comp-bio/sweep/scanfile"
	"github.com/ohsu-comp-bio/sweep/sweep"
	"github.com/spf13/cobra"
)

// Cmd represents the "expand" command
var Cmd = &cobra.Command{
	Use:   "expand <file>",
	Short: "Print the configurations a scan file expands to.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := scanfile.Load(args[0])
		if err != nil {
			return err
		}
		configs, err := sweep.Expand(def.Params)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, c := range configs {
			fmt.Fprintf(out, "Setting %d:\n", i)
			for _, k := range c.Keys() {
				v, _ := c.Get(k)
				fmt.Fprintf(out, "\t %s %s\n", k, v)
			}
		}
		fmt.Fprintf(out, "%d jobs for target %s\n", len(configs), def.Target)
		return nil
	},
}

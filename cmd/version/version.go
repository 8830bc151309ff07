package version

import (
	"fmt"

	"github.com/ohsu-comp-bio/sweep/logger"
	"github.com/ohsu-comp-bio/sweep/version"
	"github.com/spf13/cobra"
)

// Cmd represents the "version" command
var Cmd = &cobra.Command{
	Use: "version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

// Log logs build and version information to the given logger.
func Log(l *logger.Logger) {
	l.Debug("Version", version.LogFields()...)
}

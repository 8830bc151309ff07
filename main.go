package main

import (
	"errors"
	"os"

	"github.com/ohsu-comp-bio/sweep/cmd"
	"github.com/ohsu-comp-bio/sweep/confirm"
	"github.com/ohsu-comp-bio/sweep/logger"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		if errors.Is(err, confirm.ErrAbort) {
			os.Exit(0)
		}
		logger.PrintSimpleError(err)
		os.Exit(1)
	}
}

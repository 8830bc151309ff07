// Package slurm contains the Slurm scheduler backend.
package slurm

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ohsu-comp-bio/sweep/compute"
	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/logger"
)

// NewBackend returns a new Slurm HPCBackend instance.
// The configuration is handed to the workers of the submitted jobs.
func NewBackend(conf config.Config, log *logger.Logger) *compute.HPCBackend {
	submit := conf.Slurm.SubmitCmd
	if submit == "" {
		submit = "sbatch"
	}
	return &compute.HPCBackend{
		Name:      "slurm",
		SubmitCmd: submit,
		Template:  conf.Slurm.Template,
		Account:   conf.Slurm.Account,
		QOS:       conf.Slurm.QOS,
		Conf:      &conf,
		ExtractID: extractID,
		Log:       log,
	}
}

var submitted = regexp.MustCompile(`Submitted batch job ([0-9]+)\s*$`)

// extractID extracts the job id from the response returned by the `sbatch` command.
// Example response:
// Submitted batch job 2
//
// Wrappers around sbatch print other text; for those the last token is used.
func extractID(in string) (int, error) {
	m := submitted.FindStringSubmatch(in)
	if m == nil {
		return compute.LastTokenID(in)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parsing slurm job id: %w", err)
	}
	return id, nil
}

// Package config contains the configuration of the sweep commands.
package config

import (
	"github.com/ohsu-comp-bio/sweep/logger"
)

// Config describes configuration for sweep.
type Config struct {
	// Scan file used when sweep is invoked without arguments.
	ScanFile  string
	Logger    logger.Config
	Slurm     HPCBackend
	Job       JobSettings
	Framework Framework
	Plugins   Plugins
}

// HPCBackend describes the batch scheduler used to submit jobs.
type HPCBackend struct {
	// Command used to submit a job script, e.g. "sbatch".
	SubmitCmd string
	// text/template source of the job script.
	Template string
	Account  string
	// Quality of service. Defaults to the job partition when empty.
	QOS string
}

// Framework describes the external processing framework a worker delegates to.
type Framework struct {
	// Command (argv) of the processing entrypoint. It receives one JSON
	// request on stdin.
	Command []string
	// Context name per deployment, e.g. "xenonnt" -> "xenonnt_online".
	Contexts map[string]string
}

// Plugins describes plugin resolution.
type Plugins struct {
	// Module search paths containing this string belong to the standard
	// plugin set and are resolved without loading anything.
	StandardPath string
}

package config

import (
	"github.com/ohsu-comp-bio/sweep/logger"
)

// DefaultConfig returns configuration with simple defaults.
func DefaultConfig() Config {
	return Config{
		ScanFile: "sweep.yaml",
		Logger:   logger.DefaultConfig(),
		Slurm: HPCBackend{
			SubmitCmd: "sbatch",
			Template:  SlurmTemplate,
			Account:   "pi-lgrandi",
		},
		Job: DefaultJobSettings(),
		Framework: Framework{
			Command: []string{"strax-make"},
			Contexts: map[string]string{
				"xenonnt": "xenonnt_online",
				"xenon1t": "xenon1t_dali",
			},
		},
		Plugins: Plugins{
			StandardPath: "straxen.plugins",
		},
	}
}

// DefaultJobSettings returns the batch job settings used when a scan does
// not override them.
func DefaultJobSettings() JobSettings {
	return JobSettings{
		NCPU:        4,
		MaxHours:    8,
		MemPerCPU:   8000,
		Partition:   "dali",
		CondaDir:    "/dali/lgrandi/strax/miniconda3",
		EnvName:     "strax",
		ExtraHeader: "",
	}
}

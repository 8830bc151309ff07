package config

// The following variables are available for use in the templates:
//
// JobName        name of the scan, prefixed with "scan_"
// Cpus           requested cpus
// MemPerCPU      memory per cpu in MB
// MaxHours       wall-clock limit in hours
// Partition      partition / queue
// Account        scheduler account
// QOS            quality of service
// LogFile        stdout and stderr of the job
// ExtraHeader    additional scheduler directives, verbatim
// CondaDir       conda installation
// EnvName        conda environment to activate
// Command        shell-quoted worker invocation

// See https://golang.org/pkg/text/template for more information

// SlurmTemplate is the default job script for SLURM.
const SlurmTemplate = `#!/bin/bash
#SBATCH --job-name={{.JobName}}
#SBATCH --ntasks=1
#SBATCH --cpus-per-task={{.Cpus}}
#SBATCH --mem-per-cpu={{.MemPerCPU}}
#SBATCH --time={{printf "%02d" .MaxHours}}:00:00
#SBATCH --partition={{.Partition}}
#SBATCH --account={{.Account}}
#SBATCH --qos={{.QOS}}
#SBATCH --output={{.LogFile}}
#SBATCH --error={{.LogFile}}
{{.ExtraHeader}}
# Conda
. "{{.CondaDir}}/etc/profile.d/conda.sh"
{{.CondaDir}}/bin/conda activate {{.EnvName}}
echo Starting scanner
{{.Command}}
`

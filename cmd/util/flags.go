package util

import (
	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/spf13/pflag"
)

// ConfigFlags returns a new flag set for the --config file and the
// configuration values that can be set from the command line.
func ConfigFlags(flagConf *config.Config, configFile *string) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVarP(configFile, "config", "c", *configFile, "Config File")

	f.AddFlagSet(loggerFlags(flagConf))
	f.AddFlagSet(slurmFlags(flagConf))
	f.AddFlagSet(jobFlags(flagConf))
	f.AddFlagSet(frameworkFlags(flagConf))

	return f
}

func loggerFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Logger.Level, "Logger.Level", flagConf.Logger.Level, "Level of logging")
	f.StringVar(&flagConf.Logger.OutputFile, "Logger.OutputFile", flagConf.Logger.OutputFile, "File path to write logs to")
	f.StringVar(&flagConf.Logger.Formatter, "Logger.Formatter", flagConf.Logger.Formatter, "Logs formatter. One of ['text', 'json']")

	return f
}

func slurmFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Slurm.SubmitCmd, "Slurm.SubmitCmd", flagConf.Slurm.SubmitCmd, "Command used to submit job scripts")
	f.StringVar(&flagConf.Slurm.Account, "Slurm.Account", flagConf.Slurm.Account, "Scheduler account")
	f.StringVar(&flagConf.Slurm.QOS, "Slurm.QOS", flagConf.Slurm.QOS, "Quality of service. Defaults to the partition")

	return f
}

func jobFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.IntVar(&flagConf.Job.NCPU, "Job.NCPU", flagConf.Job.NCPU, "Default cpus per job")
	f.IntVar(&flagConf.Job.MaxHours, "Job.MaxHours", flagConf.Job.MaxHours, "Default wall-clock limit in hours")
	f.IntVar(&flagConf.Job.MemPerCPU, "Job.MemPerCPU", flagConf.Job.MemPerCPU, "Default memory per cpu in MB")
	f.StringVar(&flagConf.Job.Partition, "Job.Partition", flagConf.Job.Partition, "Default partition")
	f.StringVar(&flagConf.Job.CondaDir, "Job.CondaDir", flagConf.Job.CondaDir, "Conda installation of the jobs")
	f.StringVar(&flagConf.Job.EnvName, "Job.EnvName", flagConf.Job.EnvName, "Conda environment of the jobs")

	return f
}

func frameworkFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringSliceVar(&flagConf.Framework.Command, "Framework.Command", flagConf.Framework.Command, "Processing framework command")
	f.StringToStringVar(&flagConf.Framework.Contexts, "Framework.Contexts", flagConf.Framework.Contexts, "Framework context per deployment")
	f.StringVar(&flagConf.Plugins.StandardPath, "Plugins.StandardPath", flagConf.Plugins.StandardPath, "Module path of the standard plugin set")

	return f
}

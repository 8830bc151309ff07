// Package util contains helpers shared by the sweep commands.
package util

import (
	"strings"

	"github.com/imdario/mergo"
	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/spf13/pflag"
)

var separators = strings.NewReplacer("-", ".", "_", ".")

func normalize(name string) string {
	return strings.ToLower(separators.Replace(name))
}

// NormalizeFlags makes flag names case and separator insensitive, so
// --job-partition, --job_partition and --Job.Partition are the same flag.
// Pass it to cobra.Command.SetGlobalNormalizationFunc.
func NormalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	n := normalize(name)
	found := name
	f.VisitAll(func(f *pflag.Flag) {
		if normalize(f.Name) == n {
			found = f.Name
		}
	})
	return pflag.NormalizedName(found)
}

// MergeConfigFileWithFlags builds the configuration of a command: defaults,
// overlaid by the config file (if any), overlaid by flags that were set.
// Framework contexts from flags are added to those of the file.
func MergeConfigFileWithFlags(file string, flagConf config.Config) (config.Config, error) {
	conf := config.DefaultConfig()
	if err := config.ParseFile(file, &conf); err != nil {
		return conf, err
	}
	if err := mergo.Merge(&conf, flagConf, mergo.WithOverride); err != nil {
		return conf, err
	}
	return conf, nil
}

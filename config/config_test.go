package config

import (
	"strings"
	"testing"

	"github.com/ohsu-comp-bio/sweep/sweep"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsDefaults(t *testing.T) {
	yaml := `
Slurm:
  Account: pi-test
Job:
  n_cpu: 16
  partition: xenon1t
Framework:
  Command: ["python", "-m", "make"]
`
	conf := DefaultConfig()
	err := Parse([]byte(yaml), &conf)
	require.NoError(t, err)

	require.Equal(t, "pi-test", conf.Slurm.Account)
	require.Equal(t, "sbatch", conf.Slurm.SubmitCmd)
	require.Equal(t, 16, conf.Job.NCPU)
	require.Equal(t, "xenon1t", conf.Job.Partition)
	require.Equal(t, 8, conf.Job.MaxHours)
	require.Equal(t, []string{"python", "-m", "make"}, conf.Framework.Command)
	require.Equal(t, "xenonnt_online", conf.Framework.Contexts["xenonnt"])
}

func TestYamlRoundTrip(t *testing.T) {
	conf := DefaultConfig()
	conf.Job.ExtraHeader = "#SBATCH --exclude=node1"

	path, err := ToYamlTempFile(conf, t.TempDir(), "_sweep.yml")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_sweep.yml"))

	var back Config
	require.NoError(t, ParseFile(path, &back))
	require.Equal(t, conf, back)
}

func TestParseFileMissing(t *testing.T) {
	conf := DefaultConfig()
	require.NoError(t, ParseFile("", &conf))
	require.Error(t, ParseFile("/does/not/exist.yaml", &conf))
}

func TestMergeJobSettings(t *testing.T) {
	merged, err := DefaultJobSettings().Merge(map[string]interface{}{
		"n_cpu":     2,
		"max_hours": 1,
		"partition": "xenon1t",
	})
	require.NoError(t, err)
	require.Equal(t, 2, merged.NCPU)
	require.Equal(t, 1, merged.MaxHours)
	require.Equal(t, "xenon1t", merged.Partition)
	require.Equal(t, 8000, merged.MemPerCPU)
	require.Equal(t, "strax", merged.EnvName)
}

func TestMergeJobSettingsUnknownKey(t *testing.T) {
	_, err := DefaultJobSettings().Merge(map[string]interface{}{
		"n_cpu":   2,
		"foo_bar": 1,
	})
	require.Error(t, err)
	require.True(t, sweep.IsConfigError(err))
	require.Contains(t, err.Error(), "foo_bar")
	require.Contains(t, err.Error(), "extra_header")
}

func TestMergeJobSettingsWrongType(t *testing.T) {
	_, err := DefaultJobSettings().Merge(map[string]interface{}{
		"n_cpu": "four",
	})
	require.True(t, sweep.IsConfigError(err))
	require.Contains(t, err.Error(), "n_cpu")
}

func TestMergeJobSettingsZeroValues(t *testing.T) {
	_, err := DefaultJobSettings().Merge(map[string]interface{}{
		"n_cpu":     0,
		"max_hours": 0,
	})
	require.True(t, sweep.IsConfigError(err))
	require.Contains(t, err.Error(), "n_cpu")

	base := DefaultJobSettings()
	base.ExtraHeader = "#SBATCH --exclusive"
	merged, err := base.Merge(map[string]interface{}{"extra_header": ""})
	require.NoError(t, err)
	require.Equal(t, "", merged.ExtraHeader)
	require.Equal(t, base.NCPU, merged.NCPU)
}

func TestJobSettingsLines(t *testing.T) {
	s := DefaultJobSettings()
	s.JobName = "sja_scan"
	lines := s.Lines()
	require.Len(t, lines, len(JobSettingKeys))
	require.Equal(t, "job_name:   sja_scan", lines[0])
	require.Equal(t, "n_cpu:   4", lines[1])
}

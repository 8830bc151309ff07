package slurm

import (
	"testing"

	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/stretchr/testify/require"
)

func TestExtractID(t *testing.T) {
	id, err := extractID("Submitted batch job 2\n")
	require.NoError(t, err)
	require.Equal(t, 2, id)

	id, err = extractID("submitting to dali\n31337\n")
	require.NoError(t, err)
	require.Equal(t, 31337, id)

	_, err = extractID("sbatch: error: invalid partition\n")
	require.Error(t, err)
}

func TestNewBackend(t *testing.T) {
	conf := config.DefaultConfig()
	conf.Slurm.SubmitCmd = ""
	b := NewBackend(conf, nil)
	require.Equal(t, "sbatch", b.SubmitCmd)
	require.Equal(t, "slurm", b.Name)
	require.Equal(t, "pi-lgrandi", b.Account)
	require.Equal(t, config.SlurmTemplate, b.Template)
	require.Equal(t, "pi-lgrandi", b.Conf.Slurm.Account)
	require.Empty(t, b.AppConfig)
}

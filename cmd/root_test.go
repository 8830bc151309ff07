package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/confirm"
	"github.com/ohsu-comp-bio/sweep/logger"
	"github.com/ohsu-comp-bio/sweep/worker"
	"github.com/stretchr/testify/require"
)

type calls struct {
	scanPath   string
	confirm    confirm.Func
	workerArgs []string
	conf       config.Config
	out        bytes.Buffer
}

func testRoot(args ...string) (*calls, error) {
	c := &calls{}
	cmd, h := newCommandHooks()
	h.Scan = func(ctx context.Context, conf config.Config, path string, f confirm.Func, log *logger.Logger) error {
		c.scanPath = path
		c.confirm = f
		c.conf = conf
		return nil
	}
	h.Worker = func(ctx context.Context, conf config.Config, args []string, log *logger.Logger) error {
		c.workerArgs = args
		c.conf = conf
		return nil
	}
	cmd.SetOut(&c.out)
	cmd.SetArgs(args)
	return c, cmd.Execute()
}

func TestRootUsage(t *testing.T) {
	c, err := testRoot("007447", "peaks", "/out")
	require.True(t, errors.Is(err, worker.ErrUsage))
	require.Empty(t, c.scanPath)
	require.Nil(t, c.workerArgs)
}

func TestRootScan(t *testing.T) {
	c, err := testRoot()
	require.NoError(t, err)
	require.Equal(t, "sweep.yaml", c.scanPath)
	require.NotNil(t, c.confirm)
	require.Nil(t, c.workerArgs)

	c, err = testRoot("--scan", "other.hcl", "--yes", "--job.ncpu", "4")
	require.NoError(t, err)
	require.Equal(t, "other.hcl", c.scanPath)
	require.NoError(t, c.confirm("n_cpu:   4"))
	require.Contains(t, c.out.String(), "n_cpu:   4")
	require.Equal(t, 4, c.conf.Job.NCPU)
}

func TestRootWorker(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "sweep.yml")
	require.NoError(t, os.WriteFile(tmp, []byte("Job:\n  Partition: dali\n"), 0644))

	c, err := testRoot("--config", tmp, "007447", "peaks", "/out", "/logs/x_conf", "xenonnt")
	require.NoError(t, err)
	require.Equal(t, []string{"007447", "peaks", "/out", "/logs/x_conf", "xenonnt"}, c.workerArgs)
	require.Equal(t, "dali", c.conf.Job.Partition)
	require.Empty(t, c.scanPath)
}

func TestRootWorkerAfterDash(t *testing.T) {
	c, err := testRoot("--", "-5", "-peaks", "/out", "/logs/x_conf", "xenonnt")
	require.NoError(t, err)
	require.Equal(t, []string{"-5", "-peaks", "/out", "/logs/x_conf", "xenonnt"}, c.workerArgs)

	c, err = testRoot("007447", "--", "-5", "peaks", "/out", "/logs/x_conf")
	require.True(t, errors.Is(err, worker.ErrUsage))
	require.Nil(t, c.workerArgs)
}

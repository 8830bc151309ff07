// Package worker contains the command running one job of a scan.
package worker

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/ohsu-comp-bio/sweep/cmd/util"
	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/framework"
	"github.com/ohsu-comp-bio/sweep/logger"
	"github.com/ohsu-comp-bio/sweep/plugin"
	sigutil "github.com/ohsu-comp-bio/sweep/util"
	"github.com/ohsu-comp-bio/sweep/worker"
	"github.com/spf13/cobra"
)

// NewCommand returns the worker command
func NewCommand() *cobra.Command {
	cmd, _ := newCommandHooks()
	return cmd
}

type hooks struct {
	Run func(ctx context.Context, conf config.Config, args []string, log *logger.Logger) error
}

func newCommandHooks() (*cobra.Command, *hooks) {
	hooks := &hooks{
		Run: Run,
	}

	var (
		configFile string
		flagConf   config.Config
	)

	cmd := &cobra.Command{
		Use:   "worker <run_id> <target> <output_dir> <config_file> <deployment>",
		Short: "Run one job of a scan. Submitted job scripts call this.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := util.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}
			log := logger.NewLogger("worker", conf.Logger)
			ctx := sigutil.SignalContext(context.Background(), time.Millisecond, syscall.SIGINT, syscall.SIGTERM)
			return hooks.Run(ctx, conf, args, log)
		},
	}
	cmd.SetGlobalNormalizationFunc(util.NormalizeFlags)
	cmd.Flags().AddFlagSet(util.ConfigFlags(&flagConf, &configFile))

	return cmd, hooks
}

// Run parses the worker arguments and runs the job. The framework command's
// output goes to stdout and stderr, which the scheduler writes to the job log.
func Run(ctx context.Context, conf config.Config, args []string, log *logger.Logger) error {
	a, err := worker.ParseArgs(args)
	if err != nil {
		return err
	}
	return worker.Run(ctx, a, worker.Options{
		Plugins:   plugin.NewRegistry(conf.Plugins.StandardPath),
		Framework: framework.NewCommandFactory(conf.Framework, os.Stdout, os.Stderr, log.Sub("framework")),
		Log:       log,
	})
}

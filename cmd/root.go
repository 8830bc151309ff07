// Package cmd contains the sweep CLI commands.
package cmd

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/ohsu-comp-bio/sweep/cmd/expand"
	"github.com/ohsu-comp-bio/sweep/cmd/scan"
	"github.com/ohsu-comp-bio/sweep/cmd/util"
	"github.com/ohsu-comp-bio/sweep/cmd/version"
	workercmd "github.com/ohsu-comp-bio/sweep/cmd/worker"
	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/confirm"
	"github.com/ohsu-comp-bio/sweep/logger"
	sigutil "github.com/ohsu-comp-bio/sweep/util"
	"github.com/ohsu-comp-bio/sweep/worker"
	"github.com/spf13/cobra"
)

// RootCmd represents the root command
var RootCmd = NewCommand()

// NewCommand returns the root command.
//
// Without arguments it submits the scan file given by --scan (default
// sweep.yaml). With exactly five arguments it runs one job in worker mode;
// this is how submitted job scripts call it.
func NewCommand() *cobra.Command {
	cmd, _ := newCommandHooks()
	return cmd
}

type hooks struct {
	Scan   func(ctx context.Context, conf config.Config, path string, c confirm.Func, log *logger.Logger) error
	Worker func(ctx context.Context, conf config.Config, args []string, log *logger.Logger) error
}

func newCommandHooks() (*cobra.Command, *hooks) {
	hooks := &hooks{
		Scan:   scan.Run,
		Worker: workercmd.Run,
	}

	var (
		configFile string
		flagConf   config.Config
		scanFile   string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:           "sweep [run_id target output_dir config_file deployment]",
		Short:         "Submit parameter scans as batch jobs.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			// Jobs pass the worker arguments after "--" so run ids may
			// start with a dash.
			if dash := cmd.ArgsLenAtDash(); dash > 0 {
				return fmt.Errorf("%w: got %d arguments before \"--\"", worker.ErrUsage, dash)
			}
			if n := len(args); n != 0 && n != 5 {
				return fmt.Errorf("%w: got %d arguments", worker.ErrUsage, n)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := util.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}
			logger.Configure(conf.Logger)
			log := logger.NewLogger("sweep", conf.Logger)
			version.Log(log)
			ctx := sigutil.SignalContext(context.Background(), time.Millisecond, syscall.SIGINT, syscall.SIGTERM)

			if len(args) == 5 {
				return hooks.Worker(ctx, conf, args, log.Sub("worker"))
			}

			path := conf.ScanFile
			if scanFile != "" {
				path = scanFile
			}
			c := confirm.Prompt(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				c = confirm.Print(cmd.OutOrStdout())
			}
			return hooks.Scan(ctx, conf, path, c, log.Sub("scan"))
		},
	}
	cmd.SetGlobalNormalizationFunc(util.NormalizeFlags)
	f := cmd.Flags()
	f.AddFlagSet(util.ConfigFlags(&flagConf, &configFile))
	f.StringVarP(&scanFile, "scan", "s", scanFile, "Scan file (YAML or HCL)")
	f.BoolVarP(&yes, "yes", "y", yes, "Submit without asking for confirmation")

	cmd.AddCommand(newCompletionCmd())
	cmd.AddCommand(expand.Cmd)
	cmd.AddCommand(scan.NewCommand())
	cmd.AddCommand(version.Cmd)
	cmd.AddCommand(workercmd.NewCommand())

	return cmd, hooks
}

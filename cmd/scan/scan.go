// Package scan contains the command submitting a scan file.
package scan

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/ohsu-comp-bio/sweep/cmd/util"
	"github.com/ohsu-comp-bio/sweep/compute/slurm"
	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/confirm"
	"github.com/ohsu-comp-bio/sweep/logger"
	"github.com/ohsu-comp-bio/sweep/plugin"
	"github.com/ohsu-comp-bio/sweep/scanfile"
	"github.com/ohsu-comp-bio/sweep/scanner"
	sigutil "github.com/ohsu-comp-bio/sweep/util"
	"github.com/spf13/cobra"
)

// NewCommand returns the scan command
func NewCommand() *cobra.Command {
	cmd, _ := newCommandHooks()
	return cmd
}

type hooks struct {
	Run func(ctx context.Context, conf config.Config, path string, c confirm.Func, log *logger.Logger) error
}

func newCommandHooks() (*cobra.Command, *hooks) {
	hooks := &hooks{
		Run: Run,
	}

	var (
		configFile string
		flagConf   config.Config
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Expand a scan file and submit one job per configuration.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := util.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}

			path := conf.ScanFile
			if len(args) == 1 {
				path = args[0]
			}
			c := confirm.Prompt(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				c = confirm.Print(cmd.OutOrStdout())
			}

			log := logger.NewLogger("scan", conf.Logger)
			ctx := sigutil.SignalContext(context.Background(), time.Millisecond, syscall.SIGINT, syscall.SIGTERM)
			return hooks.Run(ctx, conf, path, c, log)
		},
	}
	cmd.SetGlobalNormalizationFunc(util.NormalizeFlags)
	f := cmd.Flags()
	f.AddFlagSet(util.ConfigFlags(&flagConf, &configFile))
	f.BoolVarP(&yes, "yes", "y", yes, "Submit without asking for confirmation")

	return cmd, hooks
}

// Run loads the scan file at path and submits it to Slurm.
func Run(ctx context.Context, conf config.Config, path string, c confirm.Func, log *logger.Logger) error {
	def, err := scanfile.Load(path)
	if err != nil {
		return err
	}

	s := &scanner.Scanner{
		Backend:  slurm.NewBackend(conf, log.Sub("slurm")),
		Plugins:  plugin.NewRegistry(conf.Plugins.StandardPath),
		Confirm:  c,
		Defaults: conf.Job,
		Log:      log,
	}
	res, err := s.Scan(ctx, scanner.Request{
		Target:     def.Target,
		Name:       def.Name,
		Params:     def.Params,
		Register:   def.Register,
		OutputDir:  def.OutputDir,
		JobConfig:  def.JobConfig,
		LogDir:     def.LogDir,
		Deployment: def.Deployment,
	})
	if res != nil {
		log.Info("Scan submitted", "scanID", res.ScanID, "jobs", len(res.Jobs), "log_dir", def.LogDir)
	}
	return err
}

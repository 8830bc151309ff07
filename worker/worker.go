// Package worker runs one job of a scan: it reads the job file written by
// the orchestrator and asks the processing framework for the target.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ohsu-comp-bio/sweep/compute"
	"github.com/ohsu-comp-bio/sweep/framework"
	"github.com/ohsu-comp-bio/sweep/logger"
	"github.com/ohsu-comp-bio/sweep/plugin"
	"github.com/ohsu-comp-bio/sweep/sweep"
)

// ErrUsage is returned for a worker invocation with the wrong arguments.
var ErrUsage = errors.New("usage: sweep <run_id> <target> <output_dir> <config_file> <deployment>")

// Args are the positional arguments of a worker invocation.
type Args struct {
	RunID      string
	Target     string
	OutputDir  string
	ConfigFile string
	Deployment string
}

// ParseArgs requires exactly five arguments.
func ParseArgs(args []string) (Args, error) {
	if len(args) != 5 {
		return Args{}, fmt.Errorf("%w: got %d arguments", ErrUsage, len(args))
	}
	return Args{
		RunID:      args[0],
		Target:     args[1],
		OutputDir:  args[2],
		ConfigFile: args[3],
		Deployment: args[4],
	}, nil
}

// Options are the collaborators of a worker.
type Options struct {
	Plugins   *plugin.Registry
	Framework framework.Factory
	Log       *logger.Logger
}

// Run processes one job.
func Run(ctx context.Context, args Args, opts Options) error {
	log := opts.Log
	if log == nil {
		log = logger.Sub("worker")
	}
	log = log.WithFields("run_id", args.RunID, "target", args.Target)

	job, err := compute.ReadJobFile(args.ConfigFile)
	if err != nil {
		return err
	}
	deployment, err := framework.ParseDeployment(args.Deployment)
	if err != nil {
		return sweep.NewConfigError("deployment", "%v", err)
	}

	// A null register means no plugins were requested.
	var plugins []framework.Plugin
	if job.Register != nil {
		if opts.Plugins == nil {
			return sweep.NewConfigError("register", "plugins requested but no plugin registry configured")
		}
		plugins, err = opts.Plugins.ResolveAll(job.Register)
		if err != nil {
			return sweep.NewConfigError("register", "%v", err)
		}
	}

	checkCPUs(job.JobConfig.NCPU, log)

	if opts.Framework == nil {
		return fmt.Errorf("no framework configured")
	}
	fctx, err := opts.Framework(deployment, args.OutputDir)
	if err != nil {
		return frameworkError("context", err)
	}
	log.Info("Starting worker", "deployment", deployment, "output_dir", args.OutputDir,
		"config", job.Config.String(), "plugins", len(plugins))

	if len(plugins) > 0 {
		if err := fctx.Register(plugins...); err != nil {
			return frameworkError("register", err)
		}
	}

	cfg := make(map[string]interface{}, job.Config.Len())
	for _, k := range job.Config.Keys() {
		v, _ := job.Config.Get(k)
		cfg[k] = v
	}
	if err := fctx.SetConfig(cfg); err != nil {
		return frameworkError("set config", err)
	}

	if err := fctx.Make(ctx, args.RunID, args.Target, job.JobConfig.NCPU); err != nil {
		return frameworkError("make", err)
	}
	log.Info("Finished")
	return nil
}

func frameworkError(op string, err error) error {
	var fe *framework.Error
	if errors.As(err, &fe) {
		return err
	}
	return &framework.Error{Op: op, Err: err}
}

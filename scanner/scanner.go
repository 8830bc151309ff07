// Package scanner expands a parameter scan into jobs and submits them.
package scanner

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/ohsu-comp-bio/sweep/compute"
	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/confirm"
	"github.com/ohsu-comp-bio/sweep/framework"
	"github.com/ohsu-comp-bio/sweep/logger"
	"github.com/ohsu-comp-bio/sweep/plugin"
	"github.com/ohsu-comp-bio/sweep/sweep"
	"github.com/ohsu-comp-bio/sweep/util"
	"github.com/ohsu-comp-bio/sweep/util/fsutil"
)

// Submitter submits one job. *compute.HPCBackend implements it.
type Submitter interface {
	Submit(ctx context.Context, job *compute.Job) (*compute.SubmittedJob, error)
}

// Request describes a scan.
type Request struct {
	// ScanID is generated when empty.
	ScanID     string
	Target     string
	Name       string
	Params     *sweep.Params
	Register   []plugin.Registration
	OutputDir  string
	JobConfig  map[string]interface{}
	LogDir     string
	Deployment string
}

// Result lists the jobs the scheduler accepted, in submission order.
type Result struct {
	ScanID string
	Jobs   []*compute.SubmittedJob
}

// Scanner submits scans.
type Scanner struct {
	Backend  Submitter
	Plugins  *plugin.Registry
	Confirm  confirm.Func
	Defaults config.JobSettings
	Log      *logger.Logger
}

// Scan expands the request's parameters and submits one job per
// configuration, asking for confirmation of the settings and of the job
// settings first.
//
// Configuration errors are returned before anything is submitted. Errors of
// individual submissions are collected; the remaining jobs are still
// submitted.
func (s *Scanner) Scan(ctx context.Context, req Request) (*Result, error) {
	if req.ScanID == "" {
		req.ScanID = util.GenScanID()
	}
	ctx = context.WithValue(ctx, logger.ScanIDKey, req.ScanID)
	log := s.log()

	if req.Params == nil || !req.Params.Has(sweep.RunIDKey) {
		return nil, sweep.NewConfigError(sweep.RunIDKey, "no run_id key found in parameters")
	}
	for _, k := range []string{compute.RegisterKey, compute.JobConfigKey} {
		if req.Params.Has(k) {
			return nil, sweep.NewConfigError(k, "is reserved and cannot be used as a parameter")
		}
	}
	deployment, err := framework.ParseDeployment(req.Deployment)
	if err != nil {
		return nil, sweep.NewConfigError("deployment", "%v", err)
	}

	configs, err := sweep.Expand(req.Params)
	if err != nil {
		return nil, err
	}
	runIDs := make([]string, len(configs))
	for i, c := range configs {
		v, _ := c.Get(sweep.RunIDKey)
		runIDs[i], err = runIDText(v)
		if err != nil {
			return nil, err
		}
	}

	log.Info("Expanded scan", ctx, "target", req.Target, "configs", len(configs))
	if err := s.confirm(settingsSummary(configs)); err != nil {
		return nil, err
	}

	defaults := s.Defaults
	defaults.JobName = req.Name
	settings, err := defaults.Merge(req.JobConfig)
	if err != nil {
		return nil, err
	}
	if err := s.confirm(jobSummary(settings)); err != nil {
		return nil, err
	}

	regs, err := s.describePlugins(req.Register)
	if err != nil {
		return nil, err
	}

	if err := fsutil.EnsureDir(req.LogDir); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	res := &Result{ScanID: req.ScanID}
	var errs *multierror.Error
	for i, c := range configs {
		if ctx.Err() != nil {
			log.Warn("Scan interrupted", ctx, "submitted", len(res.Jobs), "remaining", len(configs)-i)
			errs = multierror.Append(errs, fmt.Errorf("scan interrupted before job %d: %w", i, context.Cause(ctx)))
			break
		}

		log.Info(fmt.Sprintf("Submitting %d with %s", i, c), ctx)
		cfg := c.Clone()
		cfg.Pop(sweep.RunIDKey)

		job, err := s.Backend.Submit(ctx, &compute.Job{
			ScanID:     req.ScanID,
			RunID:      runIDs[i],
			Target:     req.Target,
			Config:     cfg,
			Register:   regs,
			Settings:   settings,
			OutputDir:  req.OutputDir,
			LogDir:     req.LogDir,
			Deployment: string(deployment),
		})
		if err != nil {
			log.Error("Submission failed", ctx, "index", i, "run_id", runIDs[i], "error", err)
			errs = multierror.Append(errs, fmt.Errorf("job %d (run %s): %w", i, runIDs[i], err))
			continue
		}
		log.Info("Submitted", ctx, "index", i, "run_id", runIDs[i], "job_id", job.ID, "log", job.LogFile)
		res.Jobs = append(res.Jobs, job)
	}
	return res, errs.ErrorOrNil()
}

func (s *Scanner) confirm(summary string) error {
	if s.Confirm == nil {
		return nil
	}
	return s.Confirm(summary)
}

func (s *Scanner) describePlugins(in []plugin.Registration) ([]plugin.Registration, error) {
	if len(in) == 0 {
		return nil, nil
	}
	if s.Plugins == nil {
		return nil, sweep.NewConfigError("register", "plugins requested but no plugin registry configured")
	}
	out := make([]plugin.Registration, 0, len(in))
	for _, reg := range in {
		d, err := s.Plugins.Describe(reg)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Scanner) log() *logger.Logger {
	if s.Log == nil {
		return logger.Sub("scanner")
	}
	return s.Log
}

func runIDText(v sweep.Value) (string, error) {
	switch v.Kind() {
	case sweep.Text:
		return v.Text(), nil
	case sweep.Int:
		return strconv.FormatInt(v.Int(), 10), nil
	}
	return "", sweep.NewConfigError(sweep.RunIDKey, "must be a string or an integer, got %s %v", v.Kind(), v)
}

// settingsSummary lists every expanded configuration.
func settingsSummary(configs []*sweep.Config) string {
	var b strings.Builder
	for i, c := range configs {
		fmt.Fprintf(&b, "Setting %d:\n", i)
		for _, k := range c.Keys() {
			v, _ := c.Get(k)
			fmt.Fprintf(&b, "\t %s %s\n", k, v)
		}
	}
	return b.String()
}

func jobSummary(s config.JobSettings) string {
	return "\nYou specified the following settings for the batch jobs:\n" +
		strings.Join(s.Lines(), "\n") + "\n"
}

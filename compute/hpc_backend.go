// Package compute submits scan jobs to a batch scheduler.
package compute

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/logger"
	"github.com/ohsu-comp-bio/sweep/plugin"
	"github.com/ohsu-comp-bio/sweep/sweep"
)

// Job describes one job of a scan.
type Job struct {
	ScanID string
	RunID  string
	Target string
	// Config holds the job's parameters without run_id.
	Config     *sweep.Config
	Register   []plugin.Registration
	Settings   config.JobSettings
	OutputDir  string
	LogDir     string
	Deployment string
}

// SubmittedJob is a job accepted by the scheduler. Its files stay in the
// log directory after the job ran.
type SubmittedJob struct {
	ID         int
	Script     string
	LogFile    string
	ConfigFile string
}

// SubmissionError is returned when the scheduler did not accept a job.
type SubmissionError struct {
	Cmd    string
	Stdout string
	Stderr string
	Err    error
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("submitting job with %s: %v", e.Cmd, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// HPCBackend represents an HPC scheduler such as Slurm.
type HPCBackend struct {
	Name      string
	SubmitCmd string
	Template  string
	Account   string
	// QOS defaults to the job partition when empty.
	QOS string
	// Executable re-invoked by the job. Defaults to the running binary.
	Executable string
	// Conf is written once into the log directory of the first job and
	// passed to every worker with --config.
	Conf *config.Config
	// AppConfig is the path of the written Conf, or a config file that
	// already exists.
	AppConfig string
	ExtractID func(string) (int, error)
	Log       *logger.Logger
}

// Submit writes the job's configuration file and script into the log
// directory and submits the script via "sbatch" or similar.
func (b *HPCBackend) Submit(ctx context.Context, job *Job) (*SubmittedJob, error) {
	if err := b.writeAppConfig(job); err != nil {
		return nil, err
	}
	files, err := b.allocate(job.LogDir)
	if err != nil {
		return nil, err
	}

	err = WriteJobFile(files.ConfigFile, &JobFile{
		Config:    job.Config,
		Register:  job.Register,
		JobConfig: job.Settings,
	})
	if err != nil {
		return nil, err
	}

	script, err := b.script(job, files)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(files.Script, []byte(script), 0755); err != nil {
		return nil, err
	}
	// CreateTemp made the file 0600.
	if err := os.Chmod(files.Script, 0755); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.SubmitCmd, files.Script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.log().Info("Submitting job", "cmd", b.SubmitCmd+" "+files.Script)
	err = cmd.Run()
	b.log().Debug("Submit output", "stdout", stdout.String(), "stderr", stderr.String())
	if err != nil {
		return nil, &SubmissionError{
			Cmd:    b.SubmitCmd,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	extract := b.ExtractID
	if extract == nil {
		extract = LastTokenID
	}
	id, err := extract(stdout.String())
	if err != nil {
		return nil, &SubmissionError{
			Cmd:    b.SubmitCmd,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	files.ID = id
	b.log().Info(fmt.Sprintf("You have job id %d", id), "backend", b.Name)
	return files, nil
}

func (b *HPCBackend) writeAppConfig(job *Job) error {
	if b.AppConfig != "" || b.Conf == nil {
		return nil
	}
	suffix := "_sweep.yml"
	if job.ScanID != "" {
		suffix = "_" + job.ScanID + ".yml"
	}
	path, err := config.ToYamlTempFile(*b.Conf, job.LogDir, suffix)
	if err != nil {
		return fmt.Errorf("writing worker config: %w", err)
	}
	b.AppConfig = path
	b.log().Debug("Wrote worker config", "path", path)
	return nil
}

func (b *HPCBackend) allocate(dir string) (*SubmittedJob, error) {
	var paths [3]string
	for i, pattern := range []string{"*_job", "*_log", "*_conf"} {
		f, err := os.CreateTemp(dir, pattern)
		if err != nil {
			return nil, fmt.Errorf("allocating job files: %w", err)
		}
		f.Close()
		paths[i], err = filepath.Abs(f.Name())
		if err != nil {
			return nil, err
		}
	}
	return &SubmittedJob{Script: paths[0], LogFile: paths[1], ConfigFile: paths[2]}, nil
}

func (b *HPCBackend) script(job *Job, files *SubmittedJob) (string, error) {
	exe := b.Executable
	if exe == "" {
		var err error
		exe, err = DetectBinaryPath()
		if err != nil {
			return "", err
		}
	}

	qos := b.QOS
	if qos == "" {
		qos = job.Settings.Partition
	}

	s := job.Settings
	return RenderScript(b.Template, ScriptData{
		JobName:     "scan_" + s.JobName,
		Cpus:        s.NCPU,
		MemPerCPU:   s.MemPerCPU,
		MaxHours:    s.MaxHours,
		Partition:   s.Partition,
		Account:     b.Account,
		QOS:         qos,
		LogFile:     files.LogFile,
		ExtraHeader: s.ExtraHeader,
		CondaDir:    s.CondaDir,
		EnvName:     s.EnvName,
		Command: WorkerCommand(exe, b.AppConfig, job.RunID, job.Target,
			job.OutputDir, files.ConfigFile, job.Deployment),
	})
}

func (b *HPCBackend) log() *logger.Logger {
	if b.Log == nil {
		return logger.Sub(b.Name)
	}
	return b.Log
}

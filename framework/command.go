package framework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/logger"
)

// Command is a Context backed by an external processing command. Make runs
// the command once with a JSON request on stdin; the command's output goes
// to Stdout and Stderr.
type Command struct {
	Argv      []string
	Context   string
	OutputDir string
	Stdout    io.Writer
	Stderr    io.Writer
	Log       *logger.Logger

	plugins []Plugin
	config  map[string]interface{}
}

// Request is the document a Command writes to the processing command.
type Request struct {
	Context    string                 `json:"context"`
	OutputDir  string                 `json:"output_folder"`
	RunID      string                 `json:"run_id"`
	Target     string                 `json:"target"`
	MaxWorkers int                    `json:"max_workers"`
	Register   []string               `json:"register"`
	Modules    map[string]string      `json:"modules,omitempty"`
	Config     map[string]interface{} `json:"config"`
}

// NewCommandFactory returns a Factory building Command contexts from conf.
func NewCommandFactory(conf config.Framework, stdout, stderr io.Writer, log *logger.Logger) Factory {
	return func(d Deployment, outputDir string) (Context, error) {
		name, ok := conf.Contexts[string(d)]
		if !ok || name == "" {
			return nil, fmt.Errorf("no framework context configured for deployment %q", d)
		}
		if len(conf.Command) == 0 {
			return nil, fmt.Errorf("no framework command configured")
		}
		return &Command{
			Argv:      conf.Command,
			Context:   name,
			OutputDir: outputDir,
			Stdout:    stdout,
			Stderr:    stderr,
			Log:       log,
			config:    map[string]interface{}{},
		}, nil
	}
}

// Register adds plugins to the context. Names must be unique.
func (c *Command) Register(plugins ...Plugin) error {
	for _, p := range plugins {
		if p == nil {
			return &Error{Op: "register", Err: errors.New("nil plugin")}
		}
		for _, known := range c.plugins {
			if known.Name() == p.Name() {
				return &Error{Op: "register", Err: fmt.Errorf("plugin %s registered twice", p.Name())}
			}
		}
		c.plugins = append(c.plugins, p)
	}
	return nil
}

// SetConfig merges cfg into the context configuration. Values must be
// JSON-encodable.
func (c *Command) SetConfig(cfg map[string]interface{}) error {
	if c.config == nil {
		c.config = map[string]interface{}{}
	}
	for k, v := range cfg {
		c.config[k] = v
	}
	return nil
}

// Make runs the processing command for target and runID.
func (c *Command) Make(ctx context.Context, runID, target string, maxWorkers int) error {
	if maxWorkers < 1 {
		return &Error{Op: "make", Err: fmt.Errorf("max workers must be at least 1, got %d", maxWorkers)}
	}

	req := Request{
		Context:    c.Context,
		OutputDir:  c.OutputDir,
		RunID:      runID,
		Target:     target,
		MaxWorkers: maxWorkers,
		Register:   make([]string, 0, len(c.plugins)),
		Config:     c.config,
	}
	for _, p := range c.plugins {
		req.Register = append(req.Register, p.Name())
		if l, ok := p.(Located); ok {
			if req.Modules == nil {
				req.Modules = map[string]string{}
			}
			req.Modules[p.Name()] = l.Module()
		}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return &Error{Op: "make", Err: fmt.Errorf("encoding request: %w", err)}
	}

	if c.Log != nil {
		c.Log.Info("Starting framework", "context", c.Context, "run_id", runID,
			"target", target, "max_workers", maxWorkers, "plugins", req.Register)
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Stdin = bytes.NewReader(body)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	err = cmd.Run()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return &Error{Op: "make", ExitCode: ee.ExitCode(), Err: err}
		}
		return &Error{Op: "make", Err: err}
	}
	return nil
}

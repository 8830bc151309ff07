// Package framework is the boundary to the external data-processing
// framework. A worker builds a Context for one deployment, registers
// plugins, applies the scan configuration and asks for a target.
package framework

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Plugin is a processing plugin handed to the framework.
type Plugin interface {
	// Name identifies the plugin to the framework, e.g.
	// "led_calibration.LEDCalibration".
	Name() string
}

// Located is a plugin that lives in a module outside the framework.
type Located interface {
	Plugin
	// Module returns the path of the module binary.
	Module() string
}

// Context is a processing context of the framework.
type Context interface {
	Register(plugins ...Plugin) error
	SetConfig(cfg map[string]interface{}) error
	// Make computes target for runID and blocks until it is done.
	Make(ctx context.Context, runID, target string, maxWorkers int) error
}

// Factory builds the Context of a deployment writing into outputDir.
type Factory func(d Deployment, outputDir string) (Context, error)

// Deployment selects one of the supported facility contexts.
type Deployment string

// Supported deployments.
const (
	XENONnT Deployment = "xenonnt"
	XENON1T Deployment = "xenon1t"
)

// Deployments lists the supported deployments.
var Deployments = []Deployment{XENONnT, XENON1T}

// ParseDeployment parses a deployment flag. Besides the deployment names
// it accepts boolean text, where true selects XENON1T.
func ParseDeployment(s string) (Deployment, error) {
	switch d := Deployment(strings.ToLower(strings.TrimSpace(s))); d {
	case XENONnT, XENON1T:
		return d, nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		if b {
			return XENON1T, nil
		}
		return XENONnT, nil
	}
	return "", fmt.Errorf("unknown deployment %q, expected one of %v", s, Deployments)
}

// Error reports a failure inside the framework.
type Error struct {
	Op       string
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("framework %s failed with exit code %d: %v", e.Op, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("framework %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

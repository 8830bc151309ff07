// Package scanfile reads scan definitions from YAML or HCL files.
//
// A YAML scan file looks like
//
//	target: led_calibration
//	name: sja_scan
//	register:
//	  - led_calibration.LEDCalibration
//	parameters:
//	  run_id: ["007447"]
//	  baseline_window: [[0, 30], [0, 40]]
//	  save_outside_hits_left: 20
//	  search_window: !tuple [110, 140]
//	job:
//	  n_cpu: 2
//	  max_hours: 1
//
// A sequence is enumerated; sequences nested inside it are tuples. A
// sequence tagged !tuple is a single fixed tuple.
package scanfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ohsu-comp-bio/sweep/plugin"
	"github.com/ohsu-comp-bio/sweep/sweep"
)

// Defaults of optional scan file fields.
const (
	DefaultOutputDir  = "./strax_data"
	DefaultLogDir     = "./parameter_scan"
	DefaultDeployment = "xenonnt"
)

// Definition is a scan read from a file.
type Definition struct {
	Target     string
	Name       string
	Params     *sweep.Params
	Register   []plugin.Registration
	OutputDir  string
	LogDir     string
	Deployment string
	JobConfig  map[string]interface{}
}

// Load reads the scan file at path. Files ending in .hcl are HCL, anything
// else is YAML.
func Load(path string) (*Definition, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scan file: %w", err)
	}

	var def *Definition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		def, err = ParseHCL(src, path)
	default:
		def, err = ParseYAML(src)
	}
	if err != nil {
		return nil, fmt.Errorf("scan file %s: %w", path, err)
	}
	return def, nil
}

func (d *Definition) complete() error {
	if d.Target == "" {
		return sweep.NewConfigError("target", "missing")
	}
	if d.Name == "" {
		return sweep.NewConfigError("name", "missing")
	}
	if d.Params == nil {
		d.Params = sweep.NewParams()
	}
	if d.OutputDir == "" {
		d.OutputDir = DefaultOutputDir
	}
	if d.LogDir == "" {
		d.LogDir = DefaultLogDir
	}
	if d.Deployment == "" {
		d.Deployment = DefaultDeployment
	}
	return nil
}

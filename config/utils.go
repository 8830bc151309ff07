package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
)

// ToYaml formats the configuration into YAML and returns the bytes.
func ToYaml(c Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// ToYamlFile writes the configuration to a YAML file.
func ToYamlFile(c Config, path string) error {
	b, err := ToYaml(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ToYamlTempFile writes the configuration to a YAML temp file in dir.
// The file name ends with the given suffix.
func ToYamlTempFile(c Config, dir, suffix string) (string, error) {
	f, err := os.CreateTemp(dir, "*"+suffix)
	if err != nil {
		return "", err
	}
	f.Close()
	if err := ToYamlFile(c, f.Name()); err != nil {
		return "", err
	}
	return filepath.Abs(f.Name())
}

// Parse parses a YAML doc into the given Config instance.
// Keys missing from the doc keep the values already present in conf.
func Parse(raw []byte, conf *Config) error {
	err := yaml.Unmarshal(raw, conf)
	if err != nil {
		return err
	}
	return nil
}

// ParseFile parses a sweep config file, which is formatted in YAML,
// into the given Config.
func ParseFile(relpath string, conf *Config) error {
	if relpath == "" {
		return nil
	}

	// Try to get absolute path. If it fails, fall back to relative path.
	path, abserr := filepath.Abs(relpath)
	if abserr != nil {
		path = relpath
	}

	// Read file
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config at path %s: \n%v", path, err)
	}

	// Parse file
	err = Parse(source, conf)
	if err != nil {
		return fmt.Errorf("failed to parse config at path %s: \n%v", path, err)
	}
	return nil
}

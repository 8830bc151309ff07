package compute

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/plugin"
	"github.com/ohsu-comp-bio/sweep/sweep"
)

// Reserved job file members. Scan parameters may not use these names.
const (
	RegisterKey  = "register"
	JobConfigKey = "job_config"
)

// JobFile is the document handed from the orchestrator to a worker: the
// concrete configuration of one job, the plugins to register and the job
// settings.
type JobFile struct {
	Config *sweep.Config
	// Register is nil when no plugins were requested; it is written as null.
	Register  []plugin.Registration
	JobConfig config.JobSettings
}

// MarshalJSON writes the configuration fields in order, followed by the
// "register" and "job_config" members.
func (j *JobFile) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	if j.Config != nil && j.Config.Len() > 0 {
		if err := j.Config.WriteFields(&b); err != nil {
			return nil, err
		}
		b.WriteByte(',')
	}

	reg, err := json.Marshal(j.Register)
	if err != nil {
		return nil, err
	}
	jc, err := json.Marshal(j.JobConfig)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(&b, "%q:%s,%q:%s}", RegisterKey, reg, JobConfigKey, jc)
	return b.Bytes(), nil
}

// UnmarshalJSON reads a job file. A missing "register" member reads as null;
// a missing "job_config" is an error.
func (j *JobFile) UnmarshalJSON(data []byte) error {
	out := JobFile{Config: sweep.NewConfig()}
	var sawJobConfig bool

	err := sweep.DecodeObject(data, func(key string, dec *json.Decoder) error {
		switch key {
		case RegisterKey:
			return dec.Decode(&out.Register)
		case JobConfigKey:
			sawJobConfig = true
			return dec.Decode(&out.JobConfig)
		}
		var v sweep.Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		out.Config.Set(key, v)
		return nil
	})
	if err != nil {
		return err
	}
	if !sawJobConfig {
		return fmt.Errorf("missing %q member", JobConfigKey)
	}
	*j = out
	return nil
}

// WriteJobFile writes j as JSON to path.
func WriteJobFile(path string, j *JobFile) error {
	b, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("encoding job file: %w", err)
	}
	return os.WriteFile(path, b, 0644)
}

// ReadJobFile reads the job file at path. Missing or malformed files are
// configuration errors.
func ReadJobFile(path string) (*JobFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, sweep.NewConfigError("config_file", "%v", err)
	}
	j := &JobFile{}
	if err := json.Unmarshal(b, j); err != nil {
		return nil, sweep.NewConfigError("config_file", "malformed job file %s: %v", path, err)
	}
	return j, nil
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ohsu-comp-bio/sweep/sweep"
)

// JobSettings describes the resources and environment of one batch job.
type JobSettings struct {
	JobName     string `json:"job_name"`
	NCPU        int    `json:"n_cpu"`
	MaxHours    int    `json:"max_hours"`
	MemPerCPU   int    `json:"mem-per-cpu"`
	Partition   string `json:"partition"`
	CondaDir    string `json:"conda_dir"`
	EnvName     string `json:"env_name"`
	ExtraHeader string `json:"extra_header"`
}

// JobSettingKeys lists the keys accepted as job setting overrides, in
// display order.
var JobSettingKeys = []string{
	"job_name",
	"n_cpu",
	"max_hours",
	"mem-per-cpu",
	"partition",
	"conda_dir",
	"env_name",
	"extra_header",
}

func isJobSettingKey(k string) bool {
	for _, known := range JobSettingKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Merge returns s with the given overrides applied. Unknown keys and values
// of the wrong type are configuration errors.
func (s JobSettings) Merge(overrides map[string]interface{}) (JobSettings, error) {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !isJobSettingKey(k) {
			return s, sweep.NewConfigError(k,
				"job setting is not supported. If you want to add a scheduler option please use the \"extra_header\" key")
		}
	}

	raw, err := json.Marshal(overrides)
	if err != nil {
		return s, sweep.NewConfigError("", "job settings: %v", err)
	}
	// Unmarshal onto a copy so only the keys present are applied, zero
	// values included.
	merged := s
	if err := json.Unmarshal(raw, &merged); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return s, sweep.NewConfigError(te.Field, "expected a %s, got %s", te.Type, te.Value)
		}
		return s, sweep.NewConfigError("", "job settings: %v", err)
	}
	return merged, merged.Validate()
}

// Validate checks that the resource requests are usable.
func (s JobSettings) Validate() error {
	switch {
	case s.NCPU < 1:
		return sweep.NewConfigError("n_cpu", "must be at least 1, got %d", s.NCPU)
	case s.MaxHours < 1:
		return sweep.NewConfigError("max_hours", "must be at least 1, got %d", s.MaxHours)
	case s.MemPerCPU < 1:
		return sweep.NewConfigError("mem-per-cpu", "must be at least 1, got %d", s.MemPerCPU)
	case s.Partition == "":
		return sweep.NewConfigError("partition", "must not be empty")
	}
	return nil
}

// Lines returns "key:   value" lines in display order.
func (s JobSettings) Lines() []string {
	vals := map[string]interface{}{
		"job_name":     s.JobName,
		"n_cpu":        s.NCPU,
		"max_hours":    s.MaxHours,
		"mem-per-cpu":  s.MemPerCPU,
		"partition":    s.Partition,
		"conda_dir":    s.CondaDir,
		"env_name":     s.EnvName,
		"extra_header": s.ExtraHeader,
	}
	out := make([]string, 0, len(JobSettingKeys))
	for _, k := range JobSettingKeys {
		out = append(out, fmt.Sprintf("%s:   %v", k, vals[k]))
	}
	return out
}

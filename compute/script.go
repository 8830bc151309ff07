package compute

import (
	"bytes"
	"text/template"

	"github.com/kballard/go-shellquote"
)

// ScriptData is the data available to job script templates.
// See config.SlurmTemplate.
type ScriptData struct {
	JobName     string
	Cpus        int
	MemPerCPU   int
	MaxHours    int
	Partition   string
	Account     string
	QOS         string
	LogFile     string
	ExtraHeader string
	CondaDir    string
	EnvName     string
	Command     string
}

// WorkerCommand returns the shell-quoted worker invocation of a job:
// the executable, an optional --config flag, "--" and the five positional
// arguments.
func WorkerCommand(executable, appConfig, runID, target, outputDir, configFile, deployment string) string {
	argv := []string{executable}
	if appConfig != "" {
		argv = append(argv, "--config", appConfig)
	}
	argv = append(argv, "--", runID, target, outputDir, configFile, deployment)
	return shellquote.Join(argv...)
}

// RenderScript renders a job script template.
func RenderScript(tpl string, d ScriptData) (string, error) {
	t, err := template.New("job").Option("missingkey=error").Parse(tpl)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	if err := t.Execute(&b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}

package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ohsu-comp-bio/sweep/compute"
	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/framework"
	"github.com/ohsu-comp-bio/sweep/logger"
	"github.com/ohsu-comp-bio/sweep/plugin"
	"github.com/ohsu-comp-bio/sweep/sweep"
	"github.com/stretchr/testify/require"
)

type named string

func (n named) Name() string { return string(n) }

type fakeContext struct {
	deployment framework.Deployment
	outputDir  string
	registered []string
	config     map[string]interface{}
	made       []interface{}
	makeErr    error
}

func (f *fakeContext) Register(ps ...framework.Plugin) error {
	for _, p := range ps {
		f.registered = append(f.registered, p.Name())
	}
	return nil
}

func (f *fakeContext) SetConfig(cfg map[string]interface{}) error {
	f.config = cfg
	return nil
}

func (f *fakeContext) Make(ctx context.Context, runID, target string, maxWorkers int) error {
	f.made = []interface{}{runID, target, maxWorkers}
	return f.makeErr
}

func (f *fakeContext) factory(calls *int) framework.Factory {
	return func(d framework.Deployment, outputDir string) (framework.Context, error) {
		*calls++
		f.deployment = d
		f.outputDir = outputDir
		return f, nil
	}
}

func quietLogger() *logger.Logger {
	l := logger.New("test")
	l.Discard()
	return l
}

func writeJob(t *testing.T, register []plugin.Registration) string {
	cfg := sweep.NewConfig()
	cfg.Set("baseline_window", sweep.MustTuple(sweep.IntValue(0), sweep.IntValue(30)))
	cfg.Set("gain", sweep.FloatValue(2))

	settings := config.DefaultJobSettings()
	settings.NCPU = 2

	path := filepath.Join(t.TempDir(), "x_conf")
	err := compute.WriteJobFile(path, &compute.JobFile{Config: cfg, Register: register, JobConfig: settings})
	require.NoError(t, err)
	return path
}

func TestParseArgs(t *testing.T) {
	_, err := ParseArgs([]string{"007447", "peaks", "/out"})
	require.ErrorIs(t, err, ErrUsage)

	args, err := ParseArgs([]string{"007447", "peaks", "/out", "/logs/x_conf", "False"})
	require.NoError(t, err)
	require.Equal(t, Args{"007447", "peaks", "/out", "/logs/x_conf", "False"}, args)
}

func TestRunWithoutPlugins(t *testing.T) {
	fctx := &fakeContext{}
	var calls int
	args := Args{"007447", "led_calibration", "/data/out", writeJob(t, nil), "xenon1t"}

	// A nil registry proves that resolution is skipped for a null register.
	err := Run(context.Background(), args, Options{Framework: fctx.factory(&calls), Log: quietLogger()})
	require.NoError(t, err)

	require.Equal(t, 1, calls)
	require.Equal(t, framework.XENON1T, fctx.deployment)
	require.Equal(t, "/data/out", fctx.outputDir)
	require.Empty(t, fctx.registered)
	require.Equal(t, []interface{}{"007447", "led_calibration", 2}, fctx.made)

	w := fctx.config["baseline_window"].(sweep.Value)
	require.True(t, w.Equal(sweep.MustTuple(sweep.IntValue(0), sweep.IntValue(30))))
	g := fctx.config["gain"].(sweep.Value)
	require.Equal(t, sweep.Float, g.Kind())
	require.Len(t, fctx.config, 2)
}

func TestRunWithPlugins(t *testing.T) {
	reg := plugin.NewRegistry("straxen.plugins")
	led := plugin.Registration{ModuleSearchPath: "/opt/plugins", ModuleName: "led", SymbolName: "LED"}
	require.NoError(t, reg.Register(led, func() (framework.Plugin, error) { return named("led.LED"), nil }))

	path := writeJob(t, []plugin.Registration{
		led,
		{ModuleSearchPath: "straxen.plugins", ModuleName: "straxen.plugins.peaks", SymbolName: "Peaks"},
	})

	fctx := &fakeContext{}
	var calls int
	err := Run(context.Background(), Args{"1", "peaks", "/o", path, "xenonnt"},
		Options{Plugins: reg, Framework: fctx.factory(&calls), Log: quietLogger()})
	require.NoError(t, err)
	require.Equal(t, []string{"led.LED", "straxen.plugins.peaks.Peaks"}, fctx.registered)
}

func TestRunUnresolvablePlugin(t *testing.T) {
	path := writeJob(t, []plugin.Registration{{ModuleSearchPath: t.TempDir(), ModuleName: "missing", SymbolName: "P"}})
	fctx := &fakeContext{}
	var calls int
	err := Run(context.Background(), Args{"1", "peaks", "/o", path, "xenonnt"},
		Options{Plugins: plugin.NewRegistry("straxen.plugins"), Framework: fctx.factory(&calls), Log: quietLogger()})
	require.True(t, sweep.IsConfigError(err))
	require.Equal(t, 0, calls)
}

func TestRunFrameworkFailure(t *testing.T) {
	fctx := &fakeContext{makeErr: errors.New("boom")}
	var calls int
	err := Run(context.Background(), Args{"1", "peaks", "/o", writeJob(t, nil), "xenonnt"},
		Options{Framework: fctx.factory(&calls), Log: quietLogger()})

	var fe *framework.Error
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "make", fe.Op)
}

func TestRunBadInputs(t *testing.T) {
	fctx := &fakeContext{}
	var calls int
	opts := Options{Framework: fctx.factory(&calls), Log: quietLogger()}

	err := Run(context.Background(), Args{"1", "peaks", "/o", filepath.Join(t.TempDir(), "missing"), "xenonnt"}, opts)
	require.True(t, sweep.IsConfigError(err))

	err = Run(context.Background(), Args{"1", "peaks", "/o", writeJob(t, nil), "maybe"}, opts)
	require.True(t, sweep.IsConfigError(err))

	bad := filepath.Join(t.TempDir(), "bad_conf")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))
	err = Run(context.Background(), Args{"1", "peaks", "/o", bad, "xenonnt"}, opts)
	require.True(t, sweep.IsConfigError(err))

	require.Equal(t, 0, calls)
}

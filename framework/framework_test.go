package framework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ohsu-comp-bio/sweep/config"
	"github.com/ohsu-comp-bio/sweep/sweep"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type named string

func (n named) Name() string { return string(n) }

type located struct {
	named
	path string
}

func (l located) Module() string { return l.path }

func TestParseDeployment(t *testing.T) {
	cases := map[string]Deployment{
		"xenonnt": XENONnT,
		"XENON1T": XENON1T,
		"False":   XENONnT,
		"True":    XENON1T,
	}
	for in, want := range cases {
		got, err := ParseDeployment(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseDeployment("lngs")
	require.Error(t, err)
}

func TestCommandMake(t *testing.T) {
	out := filepath.Join(t.TempDir(), "request.json")
	conf := config.Framework{
		Command:  []string{"sh", "-c", "cat > " + out + "; echo done"},
		Contexts: map[string]string{"xenonnt": "xenonnt_online"},
	}

	var stdout bytes.Buffer
	factory := NewCommandFactory(conf, &stdout, &stdout, nil)
	fctx, err := factory(XENONnT, "/data/strax")
	require.NoError(t, err)

	require.NoError(t, fctx.Register(
		named("led_calibration.LEDCalibration"),
		located{named("hits.HitFinder"), "/opt/plugins/hits"},
	))
	require.NoError(t, fctx.SetConfig(map[string]interface{}{
		"baseline_window": sweep.MustTuple(sweep.IntValue(0), sweep.IntValue(30)),
		"gain":            sweep.FloatValue(2),
	}))
	require.NoError(t, fctx.Make(context.Background(), "007447", "led_calibration", 2))
	require.Equal(t, "done\n", stdout.String())

	b, err := os.ReadFile(out)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	require.JSONEq(t, `"xenonnt_online"`, string(raw["context"]))
	require.JSONEq(t, `"/data/strax"`, string(raw["output_folder"]))
	require.JSONEq(t, `["led_calibration.LEDCalibration", "hits.HitFinder"]`, string(raw["register"]))
	require.JSONEq(t, `{"hits.HitFinder": "/opt/plugins/hits"}`, string(raw["modules"]))
	require.JSONEq(t, `2`, string(raw["max_workers"]))
	require.Contains(t, string(raw["config"]), `"gain":2.0`)
	require.Contains(t, string(raw["config"]), `"baseline_window":[0,30]`)
}

func TestCommandMakeFailure(t *testing.T) {
	conf := config.Framework{
		Command:  []string{"sh", "-c", "exit 3"},
		Contexts: map[string]string{"xenon1t": "xenon1t_dali"},
	}
	fctx, err := NewCommandFactory(conf, nil, nil, nil)(XENON1T, t.TempDir())
	require.NoError(t, err)

	err = fctx.Make(context.Background(), "007447", "peaks", 1)
	var fe *Error
	require.True(t, errors.As(err, &fe))
	require.Equal(t, 3, fe.ExitCode)
}

func TestCommandFactoryUnknownDeployment(t *testing.T) {
	conf := config.Framework{
		Command:  []string{"true"},
		Contexts: map[string]string{"xenonnt": "xenonnt_online"},
	}
	_, err := NewCommandFactory(conf, nil, nil, nil)(XENON1T, "")
	require.Error(t, err)
}

func TestCommandRegisterTwice(t *testing.T) {
	c := &Command{}
	require.NoError(t, c.Register(named("a.A")))
	require.Error(t, c.Register(named("a.A")))
}

func TestCommandMaxWorkers(t *testing.T) {
	c := &Command{Argv: []string{"true"}}
	require.Error(t, c.Make(context.Background(), "r", "t", 0))
}

package plugin

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/ohsu-comp-bio/sweep/framework"
	"github.com/ohsu-comp-bio/sweep/sweep"
	"github.com/stretchr/testify/require"
)

type named string

func (n named) Name() string { return string(n) }

type testModule []string

func (m testModule) Symbols() ([]string, error) { return m, nil }

// The test binary doubles as a plugin module binary.
func TestMain(m *testing.M) {
	if os.Getenv(Handshake.MagicCookieKey) == Handshake.MagicCookieValue {
		Serve(testModule{"LEDCalibration", "HitFinder"})
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestParseKey(t *testing.T) {
	reg, err := ParseKey("led_calibration.LEDCalibration")
	require.NoError(t, err)
	require.Equal(t, "led_calibration", reg.ModuleName)
	require.Equal(t, "LEDCalibration", reg.SymbolName)

	reg, err = ParseKey("straxen.plugins.PulseProcessing")
	require.NoError(t, err)
	require.Equal(t, "straxen.plugins", reg.ModuleName)

	for _, bad := range []string{"", "nodot", ".Sym", "mod."} {
		_, err := ParseKey(bad)
		require.Error(t, err, bad)
	}
}

func TestRegisteredLoader(t *testing.T) {
	r := NewRegistry("straxen.plugins")
	reg := Registration{ModuleSearchPath: "/opt/plugins", ModuleName: "led", SymbolName: "LED"}
	require.NoError(t, r.Register(reg, func() (framework.Plugin, error) {
		return named("led.LED"), nil
	}))
	require.Error(t, r.Register(reg, nil))
	require.Equal(t, []string{"led.LED"}, r.Keys())

	// A bare key resolves to the registered entry.
	got, err := r.Describe(Registration{ModuleName: "led", SymbolName: "LED"})
	require.NoError(t, err)
	require.Equal(t, reg, got)

	p, err := r.Resolve(got)
	require.NoError(t, err)
	require.Equal(t, "led.LED", p.Name())
}

func TestStandardPlugins(t *testing.T) {
	r := NewRegistry("straxen.plugins")
	reg, err := r.Describe(Registration{ModuleName: "straxen.plugins.peaks", SymbolName: "Peaks"})
	require.NoError(t, err)
	require.Equal(t, "straxen.plugins", reg.ModuleSearchPath)
	require.True(t, r.IsStandard(reg))

	p, err := r.Resolve(reg)
	require.NoError(t, err)
	require.Equal(t, "straxen.plugins.peaks.Peaks", p.Name())
}

func TestDescribeUnknown(t *testing.T) {
	r := NewRegistry("straxen.plugins")
	_, err := r.Describe(Registration{ModuleName: "led", SymbolName: "LED"})
	require.True(t, sweep.IsConfigError(err))

	_, err = r.Describe(Registration{ModuleName: "led"})
	require.True(t, sweep.IsConfigError(err))
}

func TestModuleLoading(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "led"), nil, 0755))

	var started []string
	r := NewRegistry("")
	r.command = func(path string) *exec.Cmd {
		started = append(started, path)
		return exec.Command(os.Args[0])
	}

	p, err := r.Resolve(Registration{ModuleSearchPath: dir, ModuleName: "led", SymbolName: "LEDCalibration"})
	require.NoError(t, err)
	require.Equal(t, "led.LEDCalibration", p.Name())
	require.Equal(t, filepath.Join(dir, "led"), p.(framework.Located).Module())

	_, err = r.Resolve(Registration{ModuleSearchPath: dir, ModuleName: "led", SymbolName: "Missing"})
	require.ErrorContains(t, err, "does not export Missing")

	reg, err := r.Describe(Registration{ModuleSearchPath: dir, ModuleName: "led", SymbolName: "HitFinder"})
	require.NoError(t, err)
	require.Equal(t, dir, reg.ModuleSearchPath)

	// The module binary was asked once.
	require.Equal(t, []string{filepath.Join(dir, "led")}, started)

	_, err = r.Describe(Registration{ModuleSearchPath: dir, ModuleName: "absent", SymbolName: "X"})
	require.True(t, sweep.IsConfigError(err))
	require.Len(t, started, 1)
}

func TestResolveAll(t *testing.T) {
	r := NewRegistry("straxen.plugins")
	ps, err := r.ResolveAll([]Registration{
		{ModuleSearchPath: "straxen.plugins", ModuleName: "straxen.plugins.a", SymbolName: "A"},
		{ModuleSearchPath: "straxen.plugins", ModuleName: "straxen.plugins.b", SymbolName: "B"},
	})
	require.NoError(t, err)
	require.Len(t, ps, 2)
	require.Equal(t, "straxen.plugins.b.B", ps[1].Name())
}

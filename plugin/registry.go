// Package plugin resolves processing plugins by registration metadata, so
// that a worker process can find the plugins chosen by the scan that
// submitted it.
//
// Plugins are looked up in three places, in order:
//
//  1. entries registered in the Registry under "<module>.<symbol>",
//  2. the standard plugin set of the framework, which needs no loading,
//  3. plugin module binaries at <module_search_path>/<module_name>. The
//     binary is started once, asked over RPC which symbols it exports (see
//     Serve) and stopped again.
package plugin

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ohsu-comp-bio/sweep/framework"
	"github.com/ohsu-comp-bio/sweep/sweep"
)

// Registration is enough information to find a plugin in another process.
type Registration struct {
	ModuleSearchPath string `json:"module_search_path"`
	ModuleName       string `json:"module_name"`
	SymbolName       string `json:"exported_symbol_name"`
}

// Key returns "<module>.<symbol>".
func (r Registration) Key() string {
	return r.ModuleName + "." + r.SymbolName
}

// ParseKey splits "<module>.<symbol>" at the last dot.
func ParseKey(key string) (Registration, error) {
	i := strings.LastIndex(key, ".")
	if i <= 0 || i == len(key)-1 {
		return Registration{}, fmt.Errorf("plugin %q is not of the form <module>.<symbol>", key)
	}
	return Registration{ModuleName: key[:i], SymbolName: key[i+1:]}, nil
}

// Loader returns a plugin.
type Loader func() (framework.Plugin, error)

type entry struct {
	reg  Registration
	load Loader
}

// Registry maps registration keys to loaders.
type Registry struct {
	// LogOutput receives the log of started module binaries.
	// Defaults to stderr.
	LogOutput io.Writer

	standardPath string
	entries      map[string]entry
	command      ModuleCommand
	symbols      map[string][]string
}

// NewRegistry returns an empty Registry. Registrations whose module search
// path or module name contains standardPath belong to the standard plugin set.
func NewRegistry(standardPath string) *Registry {
	return &Registry{
		standardPath: standardPath,
		entries:      map[string]entry{},
		command: func(path string) *exec.Cmd {
			return exec.Command(path)
		},
		symbols: map[string][]string{},
	}
}

// Register adds a loader for reg.
func (r *Registry) Register(reg Registration, load Loader) error {
	key := reg.Key()
	if _, ok := r.entries[key]; ok {
		return fmt.Errorf("plugin %s already registered", key)
	}
	r.entries[key] = entry{reg: reg, load: load}
	return nil
}

// Keys returns the registered keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsStandard reports whether reg belongs to the standard plugin set.
func (r *Registry) IsStandard(reg Registration) bool {
	if r.standardPath == "" {
		return false
	}
	return strings.Contains(reg.ModuleSearchPath, r.standardPath) ||
		(reg.ModuleSearchPath == "" && strings.HasPrefix(reg.ModuleName, r.standardPath))
}

// Describe completes a registration given by a user and checks that the
// plugin can be resolved. It is called before any job is submitted.
func (r *Registry) Describe(reg Registration) (Registration, error) {
	if reg.ModuleName == "" || reg.SymbolName == "" {
		return reg, sweep.NewConfigError("register", "plugin needs a module and a symbol name, got %q", reg.Key())
	}
	if e, ok := r.entries[reg.Key()]; ok {
		return e.reg, nil
	}
	if r.IsStandard(reg) {
		if reg.ModuleSearchPath == "" {
			reg.ModuleSearchPath = r.standardPath
		}
		return reg, nil
	}
	if reg.ModuleSearchPath == "" {
		return reg, sweep.NewConfigError("register",
			"plugin %s is not registered and has no module_search_path", reg.Key())
	}

	abs, err := filepath.Abs(reg.ModuleSearchPath)
	if err != nil {
		return reg, err
	}
	reg.ModuleSearchPath = abs
	if _, err := r.Resolve(reg); err != nil {
		return reg, sweep.NewConfigError("register", "%v", err)
	}
	return reg, nil
}

// Resolve returns the plugin described by reg.
func (r *Registry) Resolve(reg Registration) (framework.Plugin, error) {
	if e, ok := r.entries[reg.Key()]; ok {
		p, err := e.load()
		if err != nil {
			return nil, fmt.Errorf("loading plugin %s: %w", reg.Key(), err)
		}
		return p, nil
	}
	if r.IsStandard(reg) {
		return Reference(reg), nil
	}
	return r.openModule(reg)
}

// ResolveAll resolves every registration in order.
func (r *Registry) ResolveAll(regs []Registration) ([]framework.Plugin, error) {
	out := make([]framework.Plugin, 0, len(regs))
	for _, reg := range regs {
		p, err := r.Resolve(reg)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Registry) openModule(reg Registration) (framework.Plugin, error) {
	path := filepath.Join(reg.ModuleSearchPath, reg.ModuleName)
	syms, ok := r.symbols[path]
	if !ok {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("plugin module %s: %w", reg.Key(), err)
		}
		var err error
		syms, err = symbolsOf(r.command(path), r.LogOutput)
		if err != nil {
			return nil, fmt.Errorf("starting plugin module %s: %w", path, err)
		}
		r.symbols[path] = syms
	}
	for _, s := range syms {
		if s == reg.SymbolName {
			return Remote{Registration: reg, Path: path}, nil
		}
	}
	return nil, fmt.Errorf("plugin module %s does not export %s (exports %v)", path, reg.SymbolName, syms)
}

// Reference is a plugin of the standard set, passed to the framework by name.
type Reference Registration

// Name implements framework.Plugin.
func (r Reference) Name() string {
	return Registration(r).Key()
}

// Remote is a plugin exported by a module binary.
type Remote struct {
	Registration
	Path string
}

// Name implements framework.Plugin.
func (r Remote) Name() string {
	return r.Key()
}

// Module implements framework.Located.
func (r Remote) Module() string {
	return r.Path
}

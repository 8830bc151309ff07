package plugin

import (
	"fmt"
	"io"
	"net/rpc"
	"os"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"
)

// Handshake is shared by sweep and plugin module binaries, to ensure their
// versions match.
var Handshake = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "SWEEP_PLUGIN_MODULE",
	MagicCookieValue: "7c1d0c4f-processing-plugins",
}

const dispenseName = "module"

// Module is served by a plugin module binary. It lists the plugins the
// module exports, by symbol name.
type Module interface {
	Symbols() ([]string, error)
}

// Serve serves m over RPC. A plugin module's main function calls it;
// it returns when sweep disconnects.
func Serve(m Module) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins:         goplugin.PluginSet{dispenseName: &modulePlugin{impl: m}},
	})
}

// modulePlugin implements goplugin.Plugin with net/rpc.
type modulePlugin struct {
	impl Module
}

func (p *modulePlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return &moduleServer{impl: p.impl}, nil
}

func (p *modulePlugin) Client(b *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &moduleClient{client: c}, nil
}

// moduleServer maps RPC calls from sweep to the Module of the plugin process.
type moduleServer struct {
	impl Module
}

func (s *moduleServer) Symbols(args interface{}, reply *[]string) error {
	syms, err := s.impl.Symbols()
	*reply = syms
	return err
}

// moduleClient is the Module of a running plugin process.
type moduleClient struct {
	client *rpc.Client
}

func (c *moduleClient) Symbols() ([]string, error) {
	var reply []string
	err := c.client.Call("Plugin.Symbols", new(interface{}), &reply)
	return reply, err
}

// ModuleCommand returns the command starting the plugin module binary at
// path.
type ModuleCommand func(path string) *exec.Cmd

// symbolsOf starts the module binary, asks it for its symbols and stops it.
func symbolsOf(cmd *exec.Cmd, logOutput io.Writer) ([]string, error) {
	if logOutput == nil {
		logOutput = os.Stderr
	}
	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          goplugin.PluginSet{dispenseName: &modulePlugin{}},
		Cmd:              cmd,
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "plugin",
			Level:  hclog.Warn,
			Output: logOutput,
		}),
	})
	defer client.Kill()

	rpcClient, err := client.Client()
	if err != nil {
		return nil, err
	}
	raw, err := rpcClient.Dispense(dispenseName)
	if err != nil {
		return nil, err
	}
	m, ok := raw.(Module)
	if !ok {
		return nil, fmt.Errorf("unexpected module type %T", raw)
	}
	return m.Symbols()
}

package scanfile

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/ohsu-comp-bio/sweep/plugin"
	"github.com/ohsu-comp-bio/sweep/sweep"
	"gopkg.in/yaml.v3"
)

const tupleTag = "!tuple"

type yamlDoc struct {
	Target     string                 `yaml:"target"`
	Name       string                 `yaml:"name"`
	OutputDir  string                 `yaml:"output_dir"`
	LogDir     string                 `yaml:"log_dir"`
	Deployment string                 `yaml:"deployment"`
	Register   []yamlRegistration     `yaml:"register"`
	Parameters yaml.Node              `yaml:"parameters"`
	Job        map[string]interface{} `yaml:"job"`
}

// yamlRegistration is either "<module>.<symbol>" or a mapping with the
// registration fields.
type yamlRegistration plugin.Registration

func (r *yamlRegistration) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		reg, err := plugin.ParseKey(n.Value)
		if err != nil {
			return sweep.NewConfigError("register", "%v", err)
		}
		*r = yamlRegistration(reg)
		return nil
	}
	var m struct {
		ModuleSearchPath string `yaml:"module_search_path"`
		ModuleName       string `yaml:"module_name"`
		SymbolName       string `yaml:"exported_symbol_name"`
	}
	if err := n.Decode(&m); err != nil {
		return err
	}
	*r = yamlRegistration(m)
	return nil
}

// ParseYAML parses a YAML scan definition.
func ParseYAML(src []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var doc yamlDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, sweep.NewConfigError("", "empty scan file")
		}
		return nil, err
	}

	params, err := yamlParams(&doc.Parameters)
	if err != nil {
		return nil, err
	}

	def := &Definition{
		Target:     doc.Target,
		Name:       doc.Name,
		Params:     params,
		OutputDir:  doc.OutputDir,
		LogDir:     doc.LogDir,
		Deployment: doc.Deployment,
		JobConfig:  doc.Job,
	}
	for _, r := range doc.Register {
		def.Register = append(def.Register, plugin.Registration(r))
	}
	return def, def.complete()
}

func yamlParams(n *yaml.Node) (*sweep.Params, error) {
	p := sweep.NewParams()
	if n.Kind == 0 {
		return p, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, sweep.NewConfigError("parameters", "expected a mapping")
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		val := deref(n.Content[i+1])

		switch {
		case val.Kind == yaml.SequenceNode && val.ShortTag() == tupleTag:
			v, err := yamlTuple(name, val)
			if err != nil {
				return nil, err
			}
			p.Set(name, v)

		case val.Kind == yaml.SequenceNode:
			vs := make([]sweep.Value, 0, len(val.Content))
			for _, e := range val.Content {
				e = deref(e)
				var v sweep.Value
				var err error
				if e.Kind == yaml.SequenceNode {
					v, err = yamlTuple(name, e)
				} else {
					v, err = yamlScalar(name, e)
				}
				if err != nil {
					return nil, err
				}
				vs = append(vs, v)
			}
			p.Enumerate(name, vs...)

		default:
			v, err := yamlScalar(name, val)
			if err != nil {
				return nil, err
			}
			p.Set(name, v)
		}
	}
	return p, nil
}

func yamlTuple(name string, n *yaml.Node) (sweep.Value, error) {
	elems := make([]sweep.Value, 0, len(n.Content))
	for _, e := range n.Content {
		v, err := yamlScalar(name, deref(e))
		if err != nil {
			return sweep.Value{}, err
		}
		elems = append(elems, v)
	}
	return sweep.TupleValue(elems...)
}

func yamlScalar(name string, n *yaml.Node) (sweep.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return sweep.Value{}, sweep.NewConfigError(name, "line %d: expected a number or a string", n.Line)
	}
	switch n.ShortTag() {
	case "!!int":
		// Unquoted zero-padded run ids would otherwise be read as octal.
		if name == sweep.RunIDKey && zeroPadded(n.Value) {
			return sweep.Value{}, sweep.NewConfigError(name,
				"line %d: %s reads as a number, quote it to keep the leading zeros: %q", n.Line, n.Value, n.Value)
		}
		var i int64
		if err := n.Decode(&i); err != nil {
			return sweep.Value{}, sweep.NewConfigError(name, "line %d: %v", n.Line, err)
		}
		return sweep.IntValue(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return sweep.Value{}, sweep.NewConfigError(name, "line %d: %v", n.Line, err)
		}
		return sweep.FloatValue(f), nil
	case "!!str":
		return sweep.TextValue(n.Value), nil
	}
	return sweep.Value{}, sweep.NewConfigError(name, "line %d: %s values are not supported", n.Line, n.ShortTag())
}

func zeroPadded(text string) bool {
	text = strings.TrimLeft(text, "+-")
	return len(text) > 1 && text[0] == '0'
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

package scanfile

import (
	"math/big"
	"reflect"
	"regexp"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/ohsu-comp-bio/sweep/plugin"
	"github.com/ohsu-comp-bio/sweep/sweep"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var hclSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "target", Required: true},
		{Name: "name", Required: true},
		{Name: "output_dir"},
		{Name: "log_dir"},
		{Name: "deployment"},
		{Name: "register"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "parameters"},
		{Type: "job"},
	},
}

// tupleType marks a value built by tuple(...). List literals are
// enumerations, so fixed tuples need their own type.
var tupleType = cty.Capsule("tuple", reflect.TypeOf([]cty.Value(nil)))

var tupleFunc = function.New(&function.Spec{
	VarParam: &function.Parameter{Name: "elems", Type: cty.DynamicPseudoType},
	Type:     function.StaticReturnType(tupleType),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		elems := make([]cty.Value, len(args))
		copy(elems, args)
		return cty.CapsuleVal(tupleType, &elems), nil
	},
})

var hclContext = &hcl.EvalContext{
	Functions: map[string]function.Function{
		"tuple":  tupleFunc,
		"range":  stdlib.RangeFunc,
		"concat": stdlib.ConcatFunc,
		"lower":  stdlib.LowerFunc,
		"upper":  stdlib.UpperFunc,
		"format": stdlib.FormatFunc,
	},
}

// ParseHCL parses an HCL scan definition:
//
//	target = "led_calibration"
//	name   = "sja_scan"
//
//	parameters {
//	  run_id          = ["007447"]
//	  baseline_window = [tuple(0, 30), tuple(0, 40)]
//	  gain            = range(1, 2, 0.25)
//	}
//
//	job {
//	  n_cpu = 2
//	}
func ParseHCL(src []byte, filename string) (*Definition, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	content, diags := file.Body.Content(hclSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	def := &Definition{Params: sweep.NewParams()}
	for name, dst := range map[string]*string{
		"target":     &def.Target,
		"name":       &def.Name,
		"output_dir": &def.OutputDir,
		"log_dir":    &def.LogDir,
		"deployment": &def.Deployment,
	} {
		attr, ok := content.Attributes[name]
		if !ok {
			continue
		}
		v, diags := attr.Expr.Value(hclContext)
		if diags.HasErrors() {
			return nil, diags
		}
		if v.IsNull() || v.Type() != cty.String {
			return nil, sweep.NewConfigError(name, "expected a string")
		}
		*dst = v.AsString()
	}

	if attr, ok := content.Attributes["register"]; ok {
		regs, err := hclRegister(attr)
		if err != nil {
			return nil, err
		}
		def.Register = regs
	}

	for _, block := range content.Blocks {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, diags
		}
		for _, attr := range sortedAttrs(attrs) {
			v, diags := attr.Expr.Value(hclContext)
			if diags.HasErrors() {
				return nil, diags
			}
			hint := numberHintFor(attr.Expr, src)

			switch block.Type {
			case "parameters":
				if err := hclParam(def.Params, attr.Name, v, hint); err != nil {
					return nil, err
				}
			case "job":
				jv, err := hclValue(attr.Name, v, hint)
				if err != nil {
					return nil, err
				}
				if def.JobConfig == nil {
					def.JobConfig = map[string]interface{}{}
				}
				def.JobConfig[attr.Name] = jv.Interface()
			}
		}
	}
	return def, def.complete()
}

func sortedAttrs(attrs hcl.Attributes) []*hcl.Attribute {
	out := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Range.Start.Byte < out[j].Range.Start.Byte
	})
	return out
}

func hclRegister(attr *hcl.Attribute) ([]plugin.Registration, error) {
	v, diags := attr.Expr.Value(hclContext)
	if diags.HasErrors() {
		return nil, diags
	}
	if v.IsNull() {
		return nil, nil
	}
	if !v.CanIterateElements() {
		return nil, sweep.NewConfigError("register", "expected a list")
	}

	var out []plugin.Registration
	for it := v.ElementIterator(); it.Next(); {
		_, e := it.Element()
		switch {
		case e.Type() == cty.String:
			reg, err := plugin.ParseKey(e.AsString())
			if err != nil {
				return nil, sweep.NewConfigError("register", "%v", err)
			}
			out = append(out, reg)
		case e.Type().IsObjectType():
			var reg plugin.Registration
			for name, dst := range map[string]*string{
				"module_search_path":   &reg.ModuleSearchPath,
				"module_name":          &reg.ModuleName,
				"exported_symbol_name": &reg.SymbolName,
			} {
				if e.Type().HasAttribute(name) {
					if a := e.GetAttr(name); a.Type() == cty.String && !a.IsNull() {
						*dst = a.AsString()
					}
				}
			}
			out = append(out, reg)
		default:
			return nil, sweep.NewConfigError("register", "expected strings or objects")
		}
	}
	return out, nil
}

func hclParam(p *sweep.Params, name string, v cty.Value, hint *numberHint) error {
	ty := v.Type()
	if !v.IsNull() && v.IsKnown() && (ty.IsTupleType() || ty.IsListType() || ty.IsSetType()) {
		var vs []sweep.Value
		n := v.LengthInt()
		for it, i := v.ElementIterator(), 0; it.Next(); i++ {
			_, e := it.Element()
			sv, err := hclValue(name, e, hint.elem(i, n))
			if err != nil {
				return err
			}
			vs = append(vs, sv)
		}
		p.Enumerate(name, vs...)
		return nil
	}

	sv, err := hclValue(name, v, hint)
	if err != nil {
		return err
	}
	p.Set(name, sv)
	return nil
}

// hclValue converts a scalar or a tuple(...) value.
func hclValue(name string, v cty.Value, hint *numberHint) (sweep.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return sweep.Value{}, sweep.NewConfigError(name, "value is null or unknown")
	}
	if v.Type().Equals(tupleType) {
		elems := *(v.EncapsulatedValue().(*[]cty.Value))
		out := make([]sweep.Value, 0, len(elems))
		for i, e := range elems {
			if e.Type().Equals(tupleType) {
				return sweep.Value{}, sweep.NewConfigError(name, "tuples cannot be nested")
			}
			sv, err := hclValue(name, e, hint.elem(i, len(elems)))
			if err != nil {
				return sweep.Value{}, err
			}
			out = append(out, sv)
		}
		tv, err := sweep.TupleValue(out...)
		if err != nil {
			return sweep.Value{}, sweep.NewConfigError(name, "%v", err)
		}
		return tv, nil
	}

	switch v.Type() {
	case cty.String:
		return sweep.TextValue(v.AsString()), nil
	case cty.Number:
		bf := v.AsBigFloat()
		if !hint.float && bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return sweep.IntValue(i), nil
			}
		}
		f, _ := bf.Float64()
		return sweep.FloatValue(f), nil
	}
	return sweep.Value{}, sweep.NewConfigError(name, "%s values are not supported", v.Type().FriendlyName())
}

var (
	quoted    = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	floatText = regexp.MustCompile(`[0-9]\.[0-9]|(?:^|[^A-Za-z_0-9])\.[0-9]|[0-9][eE][-+]?[0-9]`)
)

// numberHint records how the numbers of an expression were written. List
// items and tuple() arguments written out literally get their own hint, so
// each number keeps the kind of its own literal. Computed values such as
// range(...) fall back to one hint for the whole expression.
type numberHint struct {
	float bool
	elems []*numberHint
}

func numberHintFor(expr hcl.Expression, src []byte) *numberHint {
	switch e := expr.(type) {
	case *hclsyntax.ParenthesesExpr:
		return numberHintFor(e.Expression, src)
	case *hclsyntax.TupleConsExpr:
		return elemHints(e.Exprs, src)
	case *hclsyntax.FunctionCallExpr:
		if e.Name == "tuple" && !e.ExpandFinal {
			return elemHints(e.Args, src)
		}
	}
	return &numberHint{float: hasFloatLiteral(expr.Range().SliceBytes(src))}
}

func elemHints(exprs []hclsyntax.Expression, src []byte) *numberHint {
	h := &numberHint{elems: make([]*numberHint, len(exprs))}
	for i, e := range exprs {
		h.elems[i] = numberHintFor(e, src)
		h.float = h.float || h.elems[i].float
	}
	return h
}

// elem returns the hint for element i of a value with n elements.
func (h *numberHint) elem(i, n int) *numberHint {
	if len(h.elems) == n {
		return h.elems[i]
	}
	return h
}

// hasFloatLiteral reports whether an expression's source contains a
// number literal with a decimal point or an exponent. Whole numbers in such
// an expression are floats.
func hasFloatLiteral(src []byte) bool {
	return floatText.Match(quoted.ReplaceAll(src, []byte(`""`)))
}

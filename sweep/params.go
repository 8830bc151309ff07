package sweep

// RunIDKey is the parameter every scan must define.
const RunIDKey = "run_id"

// Entry is one parameter of a sweep: either a fixed value or a sequence of
// values to enumerate.
type Entry struct {
	Name string
	// Values holds the single fixed value when Enumerate is false.
	Values    []Value
	Enumerate bool
}

// Params is an ordered mapping from parameter name to Entry.
type Params struct {
	entries []Entry
	index   map[string]int
}

// NewParams returns an empty Params.
func NewParams() *Params {
	return &Params{index: map[string]int{}}
}

// Set defines name as a fixed value. Redefining a name keeps its position.
func (p *Params) Set(name string, v Value) *Params {
	p.put(Entry{Name: name, Values: []Value{v}})
	return p
}

// Enumerate defines name as a sequence of values to sweep over.
func (p *Params) Enumerate(name string, vs ...Value) *Params {
	cp := make([]Value, len(vs))
	copy(cp, vs)
	p.put(Entry{Name: name, Values: cp, Enumerate: true})
	return p
}

func (p *Params) put(e Entry) {
	if p.index == nil {
		p.index = map[string]int{}
	}
	if i, ok := p.index[e.Name]; ok {
		p.entries[i] = e
		return
	}
	p.index[e.Name] = len(p.entries)
	p.entries = append(p.entries, e)
}

// Has reports whether name is defined.
func (p *Params) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.entries)
}

// Names returns the parameter names in definition order.
func (p *Params) Names() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Name
	}
	return out
}

// Entries returns the parameters in definition order.
func (p *Params) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

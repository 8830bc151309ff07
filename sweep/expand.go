package sweep

// Expand returns one Config per combination of the Cartesian product of all
// parameters. Fixed values count as single-element sequences and tuples are
// never split. Parameters keep their order; the first parameter varies
// slowest and the last one fastest.
//
// Every element of an enumeration must have the kind of its first element.
// Ints inside a float enumeration are promoted to floats.
func Expand(p *Params) ([]*Config, error) {
	entries := p.Entries()
	seqs := make([][]Value, len(entries))
	total := 1
	for i, e := range entries {
		seq, err := sequence(e)
		if err != nil {
			return nil, err
		}
		seqs[i] = seq
		total *= len(seq)
	}

	configs := make([]*Config, 0, total)
	idx := make([]int, len(entries))
	for {
		c := NewConfig()
		for i, e := range entries {
			c.Set(e.Name, seqs[i][idx[i]])
		}
		configs = append(configs, c)

		k := len(idx) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(seqs[k]) {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			return configs, nil
		}
	}
}

// sequence returns the values to iterate for e, converted to the element
// kind recorded from the first value.
func sequence(e Entry) ([]Value, error) {
	if len(e.Values) == 0 {
		if e.Enumerate {
			return nil, NewConfigError(e.Name, "empty list of values")
		}
		return nil, NewConfigError(e.Name, "no value")
	}
	if !e.Enumerate {
		if e.Values[0].Kind() == Invalid {
			return nil, NewConfigError(e.Name, "invalid value")
		}
		return e.Values[:1], nil
	}

	kind := e.Values[0].Kind()
	out := make([]Value, len(e.Values))
	for i, v := range e.Values {
		cv, ok := convert(v, kind)
		if !ok {
			return nil, NewConfigError(e.Name,
				"value %s at index %d is %s, expected %s like the first element", v, i, v.Kind(), kind)
		}
		out[i] = cv
	}
	return out, nil
}

func convert(v Value, kind Kind) (Value, bool) {
	switch {
	case kind == Invalid:
		return v, false
	case v.Kind() == kind:
		return v, true
	case kind == Float && v.Kind() == Int:
		return FloatValue(float64(v.Int())), true
	}
	return v, false
}

package sweep

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Config is one point of a parameter sweep: an ordered mapping from
// parameter name to a single value.
type Config struct {
	keys []string
	vals map[string]Value
}

// NewConfig returns an empty Config.
func NewConfig() *Config {
	return &Config{vals: map[string]Value{}}
}

// Set assigns name. New names are appended, existing ones keep their position.
func (c *Config) Set(name string, v Value) {
	if c.vals == nil {
		c.vals = map[string]Value{}
	}
	if _, ok := c.vals[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.vals[name] = v
}

// Get returns the value for name.
func (c *Config) Get(name string) (Value, bool) {
	v, ok := c.vals[name]
	return v, ok
}

// Pop removes name and returns its value.
func (c *Config) Pop(name string) (Value, bool) {
	v, ok := c.vals[name]
	if !ok {
		return Value{}, false
	}
	delete(c.vals, name)
	for i, k := range c.keys {
		if k == name {
			c.keys = append(c.keys[:i:i], c.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Keys returns the names in order.
func (c *Config) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of fields.
func (c *Config) Len() int {
	return len(c.keys)
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	n := NewConfig()
	for _, k := range c.keys {
		n.Set(k, c.vals[k])
	}
	return n
}

// Map returns the fields as plain Go values (see Value.Interface).
func (c *Config) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(c.keys))
	for _, k := range c.keys {
		out[k] = c.vals[k].Interface()
	}
	return out
}

// String renders the config as {a: 1, b: (0, 30)}.
func (c *Config) String() string {
	parts := make([]string, len(c.keys))
	for i, k := range c.keys {
		parts[i] = fmt.Sprintf("%s: %s", k, c.vals[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON writes the fields as a JSON object in order.
func (c *Config) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	if err := c.WriteFields(&b); err != nil {
		return nil, err
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// WriteFields writes the fields as comma-separated JSON members, without
// the surrounding braces. Callers use it to embed extra members.
func (c *Config) WriteFields(b *bytes.Buffer) error {
	for i, k := range c.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		vb, err := c.vals[k].MarshalJSON()
		if err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	return nil
}

// UnmarshalJSON reads a JSON object, keeping member order.
func (c *Config) UnmarshalJSON(data []byte) error {
	n := NewConfig()
	err := DecodeObject(data, func(key string, dec *json.Decoder) error {
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		n.Set(key, v)
		return nil
	})
	if err != nil {
		return err
	}
	*c = *n
	return nil
}

// DecodeObject walks the members of the JSON object in data in order,
// calling member for each key. member must consume exactly one value from dec.
func DecodeObject(data []byte, member func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, got %v", tok)
		}
		if err := member(key, dec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

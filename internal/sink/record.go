package sink

import (
	"bytes"
	"encoding/json"
)

// Field is one column of a record.
type Field struct {
	Name  string
	Value any
}

// Record is a flat row whose field order matches the destination headers.
// It marshals as a JSON object with keys in that order.
type Record []Field

// MarshalJSON writes the fields in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value of the named column.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names lists the column headers in order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// ID is the first column's value, which every lead table keys on.
func (r Record) ID() string {
	if len(r) == 0 {
		return ""
	}
	s, _ := r[0].Value.(string)
	return s
}

// withoutBlanks drops empty-string columns.
func (r Record) withoutBlanks() map[string]any {
	out := make(map[string]any, len(r))
	for _, f := range r {
		if s, ok := f.Value.(string); ok && s == "" {
			continue
		}
		out[f.Name] = f.Value
	}
	return out
}

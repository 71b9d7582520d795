package sink

import (
	"context"
	"encoding/json"
	"strings"
)

// Fanout writes to several sinks in order and stops at the first failure.
// Sinks already written are not rolled back.
type Fanout struct {
	sinks []Sink
}

// Multi combines sinks. A single sink is returned unwrapped so its result
// reaches the caller untouched; nil means there was nothing to combine.
func Multi(sinks ...Sink) Sink {
	var kept []Sink
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &Fanout{sinks: kept}
}

// Name joins the member names, e.g. "sheets+postgres".
func (f *Fanout) Name() string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

// Append returns {"<sink>": <result>, ...} for every member.
func (f *Fanout) Append(ctx context.Context, table string, rec Record) (json.RawMessage, error) {
	if len(f.sinks) == 0 {
		return nil, &Error{Sink: "fanout", Err: ErrNotConfigured}
	}
	results := make(map[string]json.RawMessage, len(f.sinks))
	for _, s := range f.sinks {
		raw, err := s.Append(ctx, table, rec)
		if err != nil {
			return nil, err
		}
		results[s.Name()] = raw
	}
	return json.Marshal(results)
}

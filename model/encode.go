package model

import (
	"encoding/json"
)

// Encode converts an instance into a structured value. Write-only
// properties never appear in the output; read-only properties appear when
// their value was computed and set. Relationship fields expand into nested
// structures up to the configured depth; relationships beyond it truncate
// to primary-key stubs, which bounds the output on cyclic relationship
// graphs. Depth 0 yields scalar fields only, foreign keys included.
func (r *Registry) Encode(inst *Instance, opts ...EncodeOption) map[string]any {
	cfg := &encodeConfig{depth: 1}
	for _, opt := range opts {
		opt(cfg)
	}
	out := encodeFields(inst)
	if cfg.depth > 0 {
		encodeEdges(inst, out, cfg.depth-1)
	}
	return out
}

// ToJSON encodes an instance to a JSON document.
func (r *Registry) ToJSON(inst *Instance, opts ...EncodeOption) ([]byte, error) {
	return json.Marshal(r.Encode(inst, opts...))
}

// encodeFields emits the set scalar fields, foreign keys included.
func encodeFields(inst *Instance) map[string]any {
	out := make(map[string]any, len(inst.fields))
	for name, value := range inst.fields {
		f := fieldByName(inst.model, name)
		if f != nil && f.WriteOnly {
			continue
		}
		out[name] = value
	}
	return out
}

// encodeEdges expands the set relationship slots of inst into out. The
// levels argument is the number of further full expansion levels; related
// instances render their scalar fields, and their own relationships expand
// again while levels remain, stubbing out beyond that.
func encodeEdges(inst *Instance, out map[string]any, levels int) {
	for _, e := range inst.model.AllEdges() {
		if e.WriteOnly {
			continue
		}
		value, ok := inst.edges[e.Name]
		if !ok {
			continue
		}
		switch related := value.(type) {
		case *Instance:
			out[e.Name] = encodeNested(related, levels)
		case []*Instance:
			list := make([]any, len(related))
			for i, ri := range related {
				list[i] = encodeNested(ri, levels)
			}
			out[e.Name] = list
		}
	}
}

func encodeNested(inst *Instance, levels int) map[string]any {
	out := encodeFields(inst)
	if levels > 0 {
		encodeEdges(inst, out, levels-1)
		return out
	}
	// Depth exhausted: remaining relationships become reference stubs.
	for _, e := range inst.model.AllEdges() {
		if e.WriteOnly {
			continue
		}
		value, ok := inst.edges[e.Name]
		if !ok {
			continue
		}
		switch related := value.(type) {
		case *Instance:
			out[e.Name] = pkStub(related)
		case []*Instance:
			list := make([]any, len(related))
			for i, ri := range related {
				list[i] = pkStub(ri)
			}
			out[e.Name] = list
		}
	}
	return out
}

// pkStub is the truncated rendering of a related instance beyond the
// expansion depth: its primary key only.
func pkStub(inst *Instance) map[string]any {
	out := make(map[string]any, 1)
	if pk := inst.model.PK(); pk != nil {
		if v, ok := inst.fields[pk.Name]; ok {
			out[pk.Name] = v
		}
	}
	return out
}

// Package model implements the conversion facade between structured values
// (mapping/sequence/scalar trees, e.g. decoded JSON) and instances of
// compiled model definitions.
//
// A Registry wraps one compiled graph. Registries are cheap, immutable and
// safe for unsynchronized concurrent use; recompiling a schema set means
// constructing a fresh registry, never mutating one already handed out.
// Decode and Encode perform no I/O and never block.
package model

import (
	"github.com/argentdb/argent/compiler/gen"
)

// Registry provides decode/encode over the models of one compiled graph.
type Registry struct {
	graph *gen.Graph
}

// NewRegistry returns a registry over the given compiled graph.
func NewRegistry(g *gen.Graph) *Registry {
	return &Registry{graph: g}
}

// Graph returns the compiled graph backing the registry.
func (r *Registry) Graph() *gen.Graph { return r.graph }

// Lookup returns the named model definition.
func (r *Registry) Lookup(name string) (*gen.Type, bool) {
	typ := r.graph.Type(name)
	return typ, typ != nil
}

// DecodeOption configures a decode call.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	strict bool
}

// Strict makes decode fail on input keys that match no model property,
// instead of ignoring them.
func Strict() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.strict = true
	}
}

// EncodeOption configures an encode call.
type EncodeOption func(*encodeConfig)

type encodeConfig struct {
	depth int
}

// WithDepth bounds the relationship expansion of encode. Depth 0 yields
// scalar fields only; at the boundary a related instance is truncated to a
// primary-key stub. The default is 1.
func WithDepth(depth int) EncodeOption {
	return func(cfg *encodeConfig) {
		cfg.depth = depth
	}
}

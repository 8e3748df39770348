// Package argent compiles OpenAPI-style schema documents into relational
// model definitions and converts between structured data and model
// instances.
//
// Compilation is a pure function from a schema set to a model graph: it
// dereferences and flattens the schemas, derives columns, relationships
// and inheritance, and fails fatally on the first defect without producing
// a partial result. The compiled graph backs a model.Registry whose decode
// and encode operations report recoverable, per-call errors.
package argent

import (
	"github.com/argentdb/argent/compiler/gen"
	"github.com/argentdb/argent/compiler/resolve"
	"github.com/argentdb/argent/schema"
)

// Compile resolves the given schema set and compiles it into a model
// graph. Options are forwarded to the graph compiler.
func Compile(schemas schema.Schemas, opts ...gen.Option) (*gen.Graph, error) {
	resolved, err := resolve.Resolve(schemas)
	if err != nil {
		return nil, err
	}
	return gen.NewGraph(gen.NewConfig(opts...), resolved)
}

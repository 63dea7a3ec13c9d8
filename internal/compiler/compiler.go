// Package compiler turns a graph snapshot into shader source text. It is a
// pure, synchronous function of (graph, catalog, backend): it never mutates
// the graph, holds no cross-call state, and always produces a valid
// document, degrading to a fixed fallback shader when the graph has no
// sink node.
package compiler

import (
	"context"
	"fmt"

	"github.com/vk/shadegrid/internal/catalog"
	"github.com/vk/shadegrid/internal/ctxlog"
	"github.com/vk/shadegrid/internal/graph"
)

// Backend selects the target shading language.
type Backend string

const (
	BackendWGSL Backend = "wgsl"
	BackendGLSL Backend = "glsl"
)

// ParseBackend validates a backend selector from config.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendWGSL, BackendGLSL:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("unknown backend %q (must be 'wgsl' or 'glsl')", s)
	}
}

// SinkDefinitionID is the definition id that designates a graph's final
// output node. Resolution starts from the first node carrying it.
const SinkDefinitionID = "output"

// Output is the compiled document. WGSL produces a single module; GLSL
// produces a split vertex/fragment bundle. Exactly one form is populated.
type Output struct {
	Backend  Backend
	Module   string
	Vertex   string
	Fragment string
}

// Texts returns the document's named stages, for writers and broadcasts.
func (o *Output) Texts() map[string]string {
	if o.Backend == BackendWGSL {
		return map[string]string{"module": o.Module}
	}
	return map[string]string{"vertex": o.Vertex, "fragment": o.Fragment}
}

// Compile resolves the graph from its sink node and assembles the document
// for the chosen backend. The only error condition is an unknown backend;
// every graph-shaped degradation (missing sink, missing definitions,
// unconnected inputs) produces valid output instead of failing.
func Compile(ctx context.Context, g *graph.Graph, cat *catalog.Catalog, backend Backend) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	var d dialect
	switch backend {
	case BackendWGSL:
		d = wgslDialect{}
	case BackendGLSL:
		d = glslDialect{}
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}

	sink := findSink(g)
	if sink == nil {
		logger.Debug("No sink node in graph, emitting fallback document.", "backend", backend)
		return d.fallbackDocument(), nil
	}

	p := newPass(g, cat, d)
	p.evaluateSink(ctx, sink)

	logger.Debug("Graph resolved.",
		"backend", backend,
		"functions", len(p.funcTexts),
		"bindings", len(p.body),
	)
	return d.assemble(p.funcTexts, p.body, p.finalExpr), nil
}

// findSink returns the first node, in insertion order, whose definition id
// marks it as the graph's designated output.
func findSink(g *graph.Graph) *graph.Node {
	for _, n := range g.Nodes() {
		if n.Definition == SinkDefinitionID {
			return n
		}
	}
	return nil
}

package compiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/shadegrid/internal/catalog"
	"github.com/vk/shadegrid/internal/ctxlog"
	"github.com/vk/shadegrid/internal/graph"
	"github.com/vk/shadegrid/internal/value"
)

// outputKey addresses one output socket of one node in the registry of
// already-generated variable names.
type outputKey struct {
	node   graph.NodeID
	output string
}

// pass is the ephemeral bookkeeping of a single compile: the visited set,
// the output-variable registry, the monotonic variable counter, and the
// accumulated declarations and body statements.
type pass struct {
	g   *graph.Graph
	cat *catalog.Catalog
	d   dialect

	visited map[graph.NodeID]bool
	outputs map[outputKey]string
	counter int

	funcTexts []string
	seenFuncs map[string]struct{}
	body      []string
	finalExpr string
}

func newPass(g *graph.Graph, cat *catalog.Catalog, d dialect) *pass {
	return &pass{
		g:         g,
		cat:       cat,
		d:         d,
		visited:   make(map[graph.NodeID]bool),
		outputs:   make(map[outputKey]string),
		seenFuncs: make(map[string]struct{}),
	}
}

// freshVar returns the next intermediate variable name. Names are issued
// in evaluation order, so later bindings may reference earlier ones.
func (p *pass) freshVar() string {
	p.counter++
	return fmt.Sprintf("v%d", p.counter)
}

// evaluateSink resolves the designated output node. Its first input is the
// final RGB (zero vector when absent), its second the alpha (1.0 when
// absent); they combine into the backend's 4-component color constructor.
func (p *pass) evaluateSink(ctx context.Context, sink *graph.Node) {
	p.visited[sink.ID] = true

	rgb := p.d.vec3Ctor("0.0", "0.0", "0.0")
	alpha := "1.0"
	if len(sink.Inputs) > 0 {
		rgb = p.resolveInput(ctx, sink, sink.Inputs[0])
	}
	if len(sink.Inputs) > 1 {
		s := sink.Inputs[1]
		// Alpha defaults to opaque, not to the scalar zero literal, so
		// only resolve it when something actually feeds or stores it.
		_, fed := p.g.FeedingConnection(s.ID)
		_, stored := sink.StoredValue(s.Name)
		if fed || stored || p.hasDefault(sink, s.Name) {
			alpha = p.resolveInput(ctx, sink, s)
		}
	}
	p.finalExpr = p.d.vec4Ctor(rgb, alpha)
}

// evaluate resolves one node depth-first. A node already visited returns
// immediately; its registry entries are reused by every other consumer, so
// each node is emitted exactly once regardless of fan-out.
func (p *pass) evaluate(ctx context.Context, n *graph.Node) {
	if p.visited[n.ID] {
		return
	}
	p.visited[n.ID] = true

	def, ok := p.cat.Get(n.Definition)
	if !ok {
		// Unknown definition: the node contributes nothing and its
		// outputs stay unregistered, so consumers fall back to zero
		// literals.
		ctxlog.FromContext(ctx).Warn("Unknown definition, skipping node.",
			"nodeID", n.ID, "definition", n.Definition)
		return
	}

	if def.ColorPicker {
		p.emitColorPicker(n, def)
		return
	}

	// Inputs resolve left-to-right in declaration order, which is also the
	// argument order of the generated call.
	args := make([]string, 0, len(n.Inputs))
	for _, s := range n.Inputs {
		args = append(args, p.resolveInput(ctx, n, s))
	}

	text := p.d.templateText(def.Template)
	if text == "" {
		ctxlog.FromContext(ctx).Warn("Definition has no template for backend, skipping node.",
			"nodeID", n.ID, "definition", n.Definition)
		return
	}

	instance := n.InstanceIdentifier()
	funcText := catalog.Substitute(text, instance)
	// Dedup by resulting text, not definition id: two instances of the
	// same definition produce different text and must both be declared.
	if _, seen := p.seenFuncs[funcText]; !seen {
		p.seenFuncs[funcText] = struct{}{}
		p.funcTexts = append(p.funcTexts, funcText)
	}

	base := def.ID + "_" + instance
	argList := strings.Join(args, ", ")

	if len(def.Outputs) == 1 {
		out := def.Outputs[0]
		v := p.freshVar()
		p.body = append(p.body, p.d.binding(v, out.Type, fmt.Sprintf("%s(%s)", base, argList)))
		p.outputs[outputKey{n.ID, out.Name}] = v
		return
	}

	// Multi-output definitions generate one function per output socket;
	// each call receives the same argument list.
	for _, out := range def.Outputs {
		mangled := base + "_" + strings.ToLower(out.Name)
		v := p.freshVar()
		p.body = append(p.body, p.d.binding(v, out.Type, fmt.Sprintf("%s(%s)", mangled, argList)))
		p.outputs[outputKey{n.ID, out.Name}] = v
	}
}

// emitColorPicker emits a terminal color binding with fixed 4-decimal
// precision. No template or function call is involved for this node kind.
func (p *pass) emitColorPicker(n *graph.Node, def *catalog.Definition) {
	stored := value.Vector(0, 0, 0)
	if len(def.Inputs) > 0 {
		if v, ok := n.StoredValue(def.Inputs[0].Name); ok {
			stored = v
		} else if def.Inputs[0].Default != nil {
			stored = *def.Inputs[0].Default
		}
	}
	c := stored.Components(3)
	expr := p.d.vec3Ctor(value.FormatFixed(c[0]), value.FormatFixed(c[1]), value.FormatFixed(c[2]))

	for _, out := range def.Outputs {
		v := p.freshVar()
		p.body = append(p.body, p.d.binding(v, out.Type, expr))
		p.outputs[outputKey{n.ID, out.Name}] = v
	}
}

// hasDefault reports whether the node's definition declares a default for
// the named input.
func (p *pass) hasDefault(n *graph.Node, socketName string) bool {
	def, ok := p.cat.Get(n.Definition)
	if !ok {
		return false
	}
	spec := def.Input(socketName)
	return spec != nil && spec.Default != nil
}

// resolveInput produces the expression feeding one input socket: the
// source output's registered variable when connected, a formatted stored
// or default value when not, and the type's zero literal when nothing at
// all is available.
func (p *pass) resolveInput(ctx context.Context, n *graph.Node, s *graph.Socket) string {
	if conn, ok := p.g.FeedingConnection(s.ID); ok {
		if src, ok := p.g.Node(conn.FromNode); ok {
			// Source code is emitted before this node's.
			p.evaluate(ctx, src)
			if srcSocket, ok := p.g.Socket(conn.From); ok {
				if varName, ok := p.outputs[outputKey{src.ID, srcSocket.Name}]; ok {
					return varName
				}
			}
		}
		// Source was skipped (unknown definition or missing template):
		// degrade to the destination type's zero literal.
		return p.zeroLiteral(s.Type)
	}

	if v, ok := n.StoredValue(s.Name); ok {
		return p.literal(s.Type, v)
	}
	if def, ok := p.cat.Get(n.Definition); ok {
		if spec := def.Input(s.Name); spec != nil && spec.Default != nil {
			return p.literal(s.Type, *spec.Default)
		}
	}
	return p.zeroLiteral(s.Type)
}

// literal formats a value as a backend literal expression, parameterized
// by the destination socket's semantic type. It applies identically to
// stored per-node values and definition-level defaults.
func (p *pass) literal(t catalog.SocketType, v value.Value) string {
	switch t {
	case catalog.TypeScalar:
		return value.FormatFloat(v.Float())
	case catalog.TypeVec3, catalog.TypeColor:
		c := v.Components(3)
		return p.d.vec3Ctor(value.FormatFloat(c[0]), value.FormatFloat(c[1]), value.FormatFloat(c[2]))
	case catalog.TypeTexture:
		return p.d.defaultTexture()
	case catalog.TypeSampler:
		return p.d.defaultSampler()
	default:
		return value.FormatFloat(0)
	}
}

// zeroLiteral is the degradation value for a socket with no feed, no
// stored value and no default.
func (p *pass) zeroLiteral(t catalog.SocketType) string {
	return p.literal(t, value.Value{})
}

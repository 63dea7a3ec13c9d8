package hclgraph

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/shadegrid/internal/catalog"
	"github.com/vk/shadegrid/internal/ctxlog"
	"github.com/vk/shadegrid/internal/graph"
	"github.com/vk/shadegrid/internal/value"
)

// nodeNamePattern keeps instance names usable as identifier fragments,
// since they flow into mangled function names.
var nodeNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load parses one graph document against a catalog. Node ids derive from
// the document's instance names, so reloading the same file always yields
// the same mangled names and therefore byte-identical compiled output.
func Load(ctx context.Context, cat *catalog.Catalog, path string) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Graph document loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse graph document %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode graph document %s: %w", path, diags)
	}

	g := graph.New()
	byName := make(map[string]*graph.Node)

	for _, block := range root.Nodes {
		if !nodeNamePattern.MatchString(block.Name) {
			return nil, fmt.Errorf("invalid node name %q: must be an identifier", block.Name)
		}
		if _, dup := byName[block.Name]; dup {
			return nil, fmt.Errorf("duplicate node name %q", block.Name)
		}
		def, ok := cat.Get(block.Definition)
		if !ok {
			return nil, fmt.Errorf("node %q references unknown definition %q", block.Name, block.Definition)
		}

		pos, err := decodePosition(block)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", block.Name, err)
		}

		n, err := g.AddNodeWithID(graph.NodeID("node-"+block.Name), def, pos)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", block.Name, err)
		}
		byName[block.Name] = n

		if err := decodeValues(g, n, block); err != nil {
			return nil, fmt.Errorf("node %q: %w", block.Name, err)
		}
	}

	for _, block := range root.Connections {
		from, err := resolveEndpoint(byName, block.From, graph.DirOutput)
		if err != nil {
			return nil, fmt.Errorf("connect %q -> %q: %w", block.From, block.To, err)
		}
		to, err := resolveEndpoint(byName, block.To, graph.DirInput)
		if err != nil {
			return nil, fmt.Errorf("connect %q -> %q: %w", block.From, block.To, err)
		}
		if _, err := g.Connect(from, to); err != nil {
			return nil, fmt.Errorf("connect %q -> %q: %w", block.From, block.To, err)
		}
	}

	// The compiler assumes acyclic input; catch author mistakes here.
	if err := g.DetectCycles(); err != nil {
		return nil, fmt.Errorf("graph document %s: %w", path, err)
	}

	logger.Debug("Graph document loaded.", "nodes", len(root.Nodes), "connections", len(root.Connections))
	return g, nil
}

func decodePosition(block *nodeBlock) (graph.Position, error) {
	if block.Position == nil {
		return graph.Position{}, nil
	}
	val, diags := block.Position.Value(nil)
	if diags.HasErrors() || val.IsNull() {
		return graph.Position{}, nil
	}
	v, err := value.FromCty(val)
	if err != nil {
		return graph.Position{}, fmt.Errorf("invalid position: %w", err)
	}
	c := v.Components(2)
	return graph.Position{X: c[0], Y: c[1]}, nil
}

func decodeValues(g *graph.Graph, n *graph.Node, block *nodeBlock) error {
	if block.Values == nil {
		return nil
	}
	val, diags := block.Values.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("invalid values attribute: %w", diags)
	}
	if val.IsNull() {
		return nil
	}
	if !val.Type().IsObjectType() {
		return fmt.Errorf("values must be an object of socket = value pairs, got %s", val.Type().FriendlyName())
	}

	// Iterate socket declaration order, not map order, for stable errors.
	for _, s := range n.Inputs {
		if !val.Type().HasAttribute(s.Name) {
			continue
		}
		stored, err := value.FromCty(val.GetAttr(s.Name))
		if err != nil {
			return fmt.Errorf("value for socket %q: %w", s.Name, err)
		}
		if err := g.SetInputValue(n.ID, s.Name, stored); err != nil {
			return err
		}
	}

	// Reject entries naming sockets the node does not have.
	for name := range val.Type().AttributeTypes() {
		if n.Input(name) == nil {
			return fmt.Errorf("values names unknown input socket %q", name)
		}
	}
	return nil
}

// resolveEndpoint parses a "node.socket" reference into a socket id.
func resolveEndpoint(byName map[string]*graph.Node, ref string, dir graph.Direction) (graph.SocketID, error) {
	parts := strings.SplitN(ref, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("endpoint must be \"node.socket\", got %q", ref)
	}
	n, ok := byName[parts[0]]
	if !ok {
		return "", fmt.Errorf("unknown node %q", parts[0])
	}
	var s *graph.Socket
	if dir == graph.DirOutput {
		s = n.Output(parts[1])
	} else {
		s = n.Input(parts[1])
	}
	if s == nil {
		return "", fmt.Errorf("node %q has no %s socket %q", parts[0], dir, parts[1])
	}
	return s.ID, nil
}

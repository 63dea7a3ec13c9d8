// Package hclgraph loads graph documents: HCL files declaring node
// instances and the connections between their sockets. Documents are built
// through the graph package's rule-enforcing operations, so everything a
// hand-written file can express is subject to the same invariants as
// editor actions.
package hclgraph

import (
	"github.com/hashicorp/hcl/v2"
)

// nodeBlock represents a `node "definition" "name"` block.
type nodeBlock struct {
	Definition string         `hcl:"definition,label"`
	Name       string         `hcl:"name,label"`
	Position   hcl.Expression `hcl:"position,optional"`
	Values     hcl.Expression `hcl:"values,optional"`
}

// connectBlock represents a `connect` block with "node.socket" endpoints.
type connectBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// fileRoot decodes all top-level blocks from a graph document.
type fileRoot struct {
	Nodes       []*nodeBlock    `hcl:"node,block"`
	Connections []*connectBlock `hcl:"connect,block"`
	Remain      hcl.Body        `hcl:",remain"`
}

package graph

import (
	"fmt"
)

// DetectCycles checks the connection graph for cycles. It returns a
// non-nil error naming the first node involved in a detected cycle.
//
// The compiler itself assumes an acyclic graph; this check is a lint run
// by document loaders and editing layers before handing a graph over.
func (g *Graph) DetectCycles() error {
	// Classic depth-first search with three sets of nodes:
	// permanent: nodes fully visited and known not to be part of a cycle.
	// temporary: nodes currently in the recursion stack.
	// unvisited: all other nodes.
	permanent := make(map[NodeID]bool)
	temporary := make(map[NodeID]bool)

	downstream := make(map[NodeID][]NodeID)
	for _, id := range g.connOrder {
		c := g.connections[id]
		downstream[c.FromNode] = append(downstream[c.FromNode], c.ToNode)
	}

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("cycle detected involving node '%s'", id)
		}

		temporary[id] = true
		for _, next := range downstream[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for _, id := range g.nodeOrder {
		if !permanent[id] {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

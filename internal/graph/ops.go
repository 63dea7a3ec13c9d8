package graph

import (
	"fmt"

	"github.com/vk/shadegrid/internal/catalog"
	"github.com/vk/shadegrid/internal/value"
)

// AddNode instantiates a definition at a position with a fresh id.
func (g *Graph) AddNode(def *catalog.Definition, pos Position) *Node {
	n, _ := g.AddNodeWithID(newNodeID(), def, pos)
	return n
}

// AddNodeWithID instantiates a definition under a caller-chosen id.
// Document loaders use this so node ids, and therefore mangled function
// names, are stable across loads of the same file.
func (g *Graph) AddNodeWithID(id NodeID, def *catalog.Definition, pos Position) (*Node, error) {
	if _, ok := g.nodes[id]; ok {
		return nil, fmt.Errorf("node id %q already exists", id)
	}

	n := &Node{
		ID:         id,
		Definition: def.ID,
		Position:   pos,
		values:     make(map[string]value.Value),
	}
	for _, spec := range def.Inputs {
		n.Inputs = append(n.Inputs, &Socket{
			ID:        socketID(id, DirInput, spec.Name),
			Node:      id,
			Name:      spec.Name,
			Type:      spec.Type,
			Direction: DirInput,
		})
	}
	for _, spec := range def.Outputs {
		n.Outputs = append(n.Outputs, &Socket{
			ID:        socketID(id, DirOutput, spec.Name),
			Node:      id,
			Name:      spec.Name,
			Type:      spec.Type,
			Direction: DirOutput,
		})
	}

	g.nodes[id] = n
	g.nodeOrder = append(g.nodeOrder, id)
	return n, nil
}

// RemoveNode destroys a node and cascades to every connection touching any
// of its sockets.
func (g *Graph) RemoveNode(id NodeID) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for _, c := range g.ConnectionsTouching(id) {
		g.Disconnect(c.ID)
	}
	delete(g.nodes, id)
	for i, nid := range g.nodeOrder {
		if nid == id {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)
			break
		}
	}
}

// Connect forms a directed edge from an output socket to an input socket.
// Connecting to an already-fed input replaces the prior connection rather
// than failing; everything else about the edge is validated.
func (g *Graph) Connect(from, to SocketID) (*Connection, error) {
	src, ok := g.Socket(from)
	if !ok {
		return nil, fmt.Errorf("source socket not found: %s", from)
	}
	dst, ok := g.Socket(to)
	if !ok {
		return nil, fmt.Errorf("destination socket not found: %s", to)
	}
	if src.Direction != DirOutput {
		return nil, fmt.Errorf("source socket %q is not an output", src.Name)
	}
	if dst.Direction != DirInput {
		return nil, fmt.Errorf("destination socket %q is not an input", dst.Name)
	}
	if src.Node == dst.Node {
		return nil, fmt.Errorf("self-referential connection not allowed on node %s", src.Node)
	}
	if !catalog.Compatible(src.Type, dst.Type) {
		return nil, fmt.Errorf("incompatible socket types: %s -> %s", src.Type, dst.Type)
	}

	// Replace-on-conflict: an input accepts at most one feed.
	if prior, ok := g.feeds[to]; ok {
		g.Disconnect(prior)
	}

	c := &Connection{
		ID:       newConnectionID(),
		From:     from,
		To:       to,
		FromNode: src.Node,
		ToNode:   dst.Node,
	}
	g.connections[c.ID] = c
	g.connOrder = append(g.connOrder, c.ID)
	g.feeds[to] = c.ID
	return c, nil
}

// Disconnect removes a connection. Unknown ids are a no-op.
func (g *Graph) Disconnect(id ConnectionID) {
	c, ok := g.connections[id]
	if !ok {
		return
	}
	delete(g.connections, id)
	delete(g.feeds, c.To)
	for i, cid := range g.connOrder {
		if cid == id {
			g.connOrder = append(g.connOrder[:i], g.connOrder[i+1:]...)
			break
		}
	}
}

// SetInputValue stores a value on an unconnected input socket, checked
// against the socket's semantic type.
func (g *Graph) SetInputValue(node NodeID, socketName string, v value.Value) error {
	n, ok := g.nodes[node]
	if !ok {
		return fmt.Errorf("node not found: %s", node)
	}
	s := n.Input(socketName)
	if s == nil {
		return fmt.Errorf("node %s has no input socket %q", node, socketName)
	}

	switch s.Type {
	case catalog.TypeScalar:
		if v.Kind() != value.KindScalar {
			return fmt.Errorf("socket %q expects a scalar value", socketName)
		}
	case catalog.TypeVec3, catalog.TypeColor:
		if v.Kind() != value.KindVector {
			return fmt.Errorf("socket %q expects a vector value", socketName)
		}
	default:
		return fmt.Errorf("socket %q of type %s cannot store a value", socketName, s.Type)
	}

	n.values[socketName] = v
	return nil
}

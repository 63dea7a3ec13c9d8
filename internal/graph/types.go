// Package graph defines the in-memory node graph the compiler walks: nodes
// instantiated from catalog definitions, their typed sockets, and directed
// socket-to-socket connections. Rule enforcement (type compatibility,
// replace-on-conflict) lives in the editing operations; the container
// itself is plain storage with lookups.
package graph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vk/shadegrid/internal/catalog"
	"github.com/vk/shadegrid/internal/value"
)

// NodeID identifies a node for its whole lifetime.
type NodeID string

// SocketID identifies a socket. Socket ids are derived from the owning
// node id plus direction and name, so they are stable and unique without
// separate bookkeeping.
type SocketID string

// ConnectionID identifies a connection.
type ConnectionID string

// Direction tells whether a socket consumes or produces a value.
type Direction int

const (
	DirInput Direction = iota
	DirOutput
)

func (d Direction) String() string {
	if d == DirOutput {
		return "out"
	}
	return "in"
}

// Position is a node's 2D placement in the editor canvas. It has no effect
// on compilation.
type Position struct {
	X float64
	Y float64
}

// Socket is a typed, named port on a node. Sockets are immutable once
// created.
type Socket struct {
	ID        SocketID
	Node      NodeID
	Name      string
	Type      catalog.SocketType
	Direction Direction
}

// Node is an instance of a catalog definition. Socket counts and types are
// fixed at creation; position and stored input values are mutable.
type Node struct {
	ID         NodeID
	Definition string
	Position   Position
	Inputs     []*Socket
	Outputs    []*Socket

	values map[string]value.Value
}

// Input returns the input socket with the given name, or nil.
func (n *Node) Input(name string) *Socket {
	for _, s := range n.Inputs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Output returns the output socket with the given name, or nil.
func (n *Node) Output(name string) *Socket {
	for _, s := range n.Outputs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// StoredValue returns the value stored for an unconnected input socket.
func (n *Node) StoredValue(socketName string) (value.Value, bool) {
	v, ok := n.values[socketName]
	return v, ok
}

// InstanceIdentifier derives the per-instance identifier used for function
// name mangling: the node id stripped of its structural prefix with any
// non-identifier characters flattened.
func (n *Node) InstanceIdentifier() string {
	id := strings.TrimPrefix(string(n.ID), nodeIDPrefix)
	return strings.ReplaceAll(id, "-", "")
}

// Connection is a directed edge from one node's output socket to another
// node's input socket. It carries no mutable state.
type Connection struct {
	ID       ConnectionID
	From     SocketID
	To       SocketID
	FromNode NodeID
	ToNode   NodeID
}

const nodeIDPrefix = "node-"

func newNodeID() NodeID {
	return NodeID(nodeIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func newConnectionID() ConnectionID {
	return ConnectionID("conn-" + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func socketID(node NodeID, dir Direction, name string) SocketID {
	return SocketID(fmt.Sprintf("%s/%s/%s", node, dir, name))
}

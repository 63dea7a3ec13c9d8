package graph

// Graph is the aggregate holding all live nodes and connections. Iteration
// order is insertion order everywhere, which is what makes repeated
// compiles of the same graph byte-identical.
type Graph struct {
	nodes     map[NodeID]*Node
	nodeOrder []NodeID

	connections map[ConnectionID]*Connection
	connOrder   []ConnectionID

	// feeds indexes the at-most-one connection into each input socket.
	feeds map[SocketID]ConnectionID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:       make(map[NodeID]*Node),
		connections: make(map[ConnectionID]*Connection),
		feeds:       make(map[SocketID]ConnectionID),
	}
}

// Node looks up a node by id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Socket looks up a socket by id across all nodes.
func (g *Graph) Socket(id SocketID) (*Socket, bool) {
	for _, n := range g.nodes {
		for _, s := range n.Inputs {
			if s.ID == id {
				return s, true
			}
		}
		for _, s := range n.Outputs {
			if s.ID == id {
				return s, true
			}
		}
	}
	return nil, false
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Connections returns all connections in insertion order.
func (g *Graph) Connections() []*Connection {
	out := make([]*Connection, 0, len(g.connOrder))
	for _, id := range g.connOrder {
		out = append(out, g.connections[id])
	}
	return out
}

// FeedingConnection returns the connection into the given input socket.
// The single-feed invariant guarantees at most one result.
func (g *Graph) FeedingConnection(socket SocketID) (*Connection, bool) {
	id, ok := g.feeds[socket]
	if !ok {
		return nil, false
	}
	return g.connections[id], true
}

// ConnectionsTouching returns every connection with an endpoint on the
// given node, in insertion order. Used for cascade delete.
func (g *Graph) ConnectionsTouching(node NodeID) []*Connection {
	var out []*Connection
	for _, id := range g.connOrder {
		c := g.connections[id]
		if c.FromNode == node || c.ToNode == node {
			out = append(out, c)
		}
	}
	return out
}

// NodeCount reports the number of live nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

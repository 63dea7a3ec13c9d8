package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/shadegrid/internal/catalog"
	"github.com/vk/shadegrid/internal/value"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	require.NoError(t, c.Add(&catalog.Definition{
		ID:      "time",
		Outputs: []*catalog.SocketSpec{{Name: "value", Type: catalog.TypeScalar}},
	}))
	require.NoError(t, c.Add(&catalog.Definition{
		ID: "scale",
		Inputs: []*catalog.SocketSpec{
			{Name: "vector", Type: catalog.TypeVec3},
			{Name: "factor", Type: catalog.TypeScalar},
		},
		Outputs: []*catalog.SocketSpec{{Name: "vector", Type: catalog.TypeVec3}},
	}))
	require.NoError(t, c.Add(&catalog.Definition{
		ID:      "color",
		Inputs:  []*catalog.SocketSpec{{Name: "color", Type: catalog.TypeColor}},
		Outputs: []*catalog.SocketSpec{{Name: "color", Type: catalog.TypeColor}},
	}))
	require.NoError(t, c.Add(&catalog.Definition{
		ID: "sample",
		Inputs: []*catalog.SocketSpec{
			{Name: "tex", Type: catalog.TypeTexture},
			{Name: "uv", Type: catalog.TypeVec3},
		},
		Outputs: []*catalog.SocketSpec{{Name: "color", Type: catalog.TypeColor}},
	}))
	return c
}

func mustDef(t *testing.T, c *catalog.Catalog, id string) *catalog.Definition {
	t.Helper()
	def, ok := c.Get(id)
	require.True(t, ok)
	return def
}

func TestAddNode(t *testing.T) {
	cat := testCatalog(t)
	g := New()

	t.Run("sockets are built from the definition", func(t *testing.T) {
		n := g.AddNode(mustDef(t, cat, "scale"), Position{X: 10, Y: 20})
		require.NotNil(t, n)
		assert.Equal(t, "scale", n.Definition)
		require.Len(t, n.Inputs, 2)
		require.Len(t, n.Outputs, 1)
		assert.Equal(t, catalog.TypeVec3, n.Inputs[0].Type)
		assert.Equal(t, DirInput, n.Inputs[0].Direction)
		assert.Equal(t, DirOutput, n.Outputs[0].Direction)
	})

	t.Run("fresh ids never collide", func(t *testing.T) {
		a := g.AddNode(mustDef(t, cat, "time"), Position{})
		b := g.AddNode(mustDef(t, cat, "time"), Position{})
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("explicit duplicate id is rejected", func(t *testing.T) {
		fresh := New()
		_, err := fresh.AddNodeWithID("node-clock", mustDef(t, cat, "time"), Position{})
		require.NoError(t, err)
		_, err = fresh.AddNodeWithID("node-clock", mustDef(t, cat, "time"), Position{})
		assert.ErrorContains(t, err, "already exists")
	})
}

func TestConnect(t *testing.T) {
	cat := testCatalog(t)

	newPair := func(t *testing.T) (*Graph, *Node, *Node) {
		g := New()
		src, err := g.AddNodeWithID("node-clock", mustDef(t, cat, "time"), Position{})
		require.NoError(t, err)
		dst, err := g.AddNodeWithID("node-zoom", mustDef(t, cat, "scale"), Position{})
		require.NoError(t, err)
		return g, src, dst
	}

	t.Run("valid connection registers as the socket's feed", func(t *testing.T) {
		g, src, dst := newPair(t)
		c, err := g.Connect(src.Output("value").ID, dst.Input("factor").ID)
		require.NoError(t, err)
		fed, ok := g.FeedingConnection(dst.Input("factor").ID)
		require.True(t, ok)
		assert.Equal(t, c.ID, fed.ID)
		assert.Equal(t, src.ID, fed.FromNode)
	})

	t.Run("unknown sockets are rejected", func(t *testing.T) {
		g, src, dst := newPair(t)
		_, err := g.Connect("node-ghost/out/value", dst.Input("factor").ID)
		assert.ErrorContains(t, err, "source socket not found")
		_, err = g.Connect(src.Output("value").ID, "node-ghost/in/factor")
		assert.ErrorContains(t, err, "destination socket not found")
	})

	t.Run("direction is enforced", func(t *testing.T) {
		g, src, dst := newPair(t)
		_, err := g.Connect(dst.Input("factor").ID, dst.Input("vector").ID)
		assert.ErrorContains(t, err, "is not an output")
		_, err = g.Connect(src.Output("value").ID, dst.Output("vector").ID)
		assert.ErrorContains(t, err, "is not an input")
	})

	t.Run("self loop is rejected", func(t *testing.T) {
		g := New()
		n, err := g.AddNodeWithID("node-zoom", mustDef(t, cat, "scale"), Position{})
		require.NoError(t, err)
		_, err = g.Connect(n.Output("vector").ID, n.Input("vector").ID)
		assert.ErrorContains(t, err, "self-referential")
	})

	t.Run("type mismatch is rejected", func(t *testing.T) {
		g, src, dst := newPair(t)
		_, err := g.Connect(src.Output("value").ID, dst.Input("vector").ID)
		assert.ErrorContains(t, err, "incompatible socket types")
	})

	t.Run("color feeds vec3 and back", func(t *testing.T) {
		g := New()
		tint, err := g.AddNodeWithID("node-tint", mustDef(t, cat, "color"), Position{})
		require.NoError(t, err)
		zoom, err := g.AddNodeWithID("node-zoom", mustDef(t, cat, "scale"), Position{})
		require.NoError(t, err)
		_, err = g.Connect(tint.Output("color").ID, zoom.Input("vector").ID)
		assert.NoError(t, err)
		_, err = g.Connect(zoom.Output("vector").ID, tint.Input("color").ID)
		assert.NoError(t, err)
	})

	t.Run("second feed replaces the first", func(t *testing.T) {
		g, src, dst := newPair(t)
		other, err := g.AddNodeWithID("node-other", mustDef(t, cat, "time"), Position{})
		require.NoError(t, err)

		first, err := g.Connect(src.Output("value").ID, dst.Input("factor").ID)
		require.NoError(t, err)
		second, err := g.Connect(other.Output("value").ID, dst.Input("factor").ID)
		require.NoError(t, err)

		fed, ok := g.FeedingConnection(dst.Input("factor").ID)
		require.True(t, ok)
		assert.Equal(t, second.ID, fed.ID)
		assert.Len(t, g.Connections(), 1)

		// The replaced edge is gone entirely.
		for _, c := range g.Connections() {
			assert.NotEqual(t, first.ID, c.ID)
		}
	})
}

func TestRemoveNode(t *testing.T) {
	cat := testCatalog(t)
	g := New()
	src, err := g.AddNodeWithID("node-clock", mustDef(t, cat, "time"), Position{})
	require.NoError(t, err)
	dst, err := g.AddNodeWithID("node-zoom", mustDef(t, cat, "scale"), Position{})
	require.NoError(t, err)
	_, err = g.Connect(src.Output("value").ID, dst.Input("factor").ID)
	require.NoError(t, err)

	g.RemoveNode(src.ID)

	_, ok := g.Node(src.ID)
	assert.False(t, ok)
	assert.Empty(t, g.Connections())
	_, ok = g.FeedingConnection(dst.Input("factor").ID)
	assert.False(t, ok)
	assert.Equal(t, 1, g.NodeCount())

	// Removing an unknown node is a no-op.
	g.RemoveNode("node-ghost")
	assert.Equal(t, 1, g.NodeCount())
}

func TestSetInputValue(t *testing.T) {
	cat := testCatalog(t)
	g := New()
	zoom, err := g.AddNodeWithID("node-zoom", mustDef(t, cat, "scale"), Position{})
	require.NoError(t, err)
	cam, err := g.AddNodeWithID("node-cam", mustDef(t, cat, "sample"), Position{})
	require.NoError(t, err)

	t.Run("scalar and vector values store", func(t *testing.T) {
		require.NoError(t, g.SetInputValue(zoom.ID, "factor", value.Scalar(2)))
		require.NoError(t, g.SetInputValue(zoom.ID, "vector", value.Vector(1, 0, 0)))

		v, ok := zoom.StoredValue("factor")
		require.True(t, ok)
		assert.Equal(t, 2.0, v.Float())
	})

	t.Run("kind mismatch is rejected", func(t *testing.T) {
		err := g.SetInputValue(zoom.ID, "factor", value.Vector(1, 2, 3))
		assert.ErrorContains(t, err, "expects a scalar")
		err = g.SetInputValue(zoom.ID, "vector", value.Scalar(1))
		assert.ErrorContains(t, err, "expects a vector")
	})

	t.Run("opaque socket types cannot store values", func(t *testing.T) {
		err := g.SetInputValue(cam.ID, "tex", value.Scalar(0))
		assert.ErrorContains(t, err, "cannot store a value")
	})

	t.Run("unknown targets are rejected", func(t *testing.T) {
		err := g.SetInputValue("node-ghost", "factor", value.Scalar(1))
		assert.ErrorContains(t, err, "node not found")
		err = g.SetInputValue(zoom.ID, "gain", value.Scalar(1))
		assert.ErrorContains(t, err, "no input socket")
	})
}

func TestInstanceIdentifier(t *testing.T) {
	n := &Node{ID: "node-split"}
	assert.Equal(t, "split", n.InstanceIdentifier())

	n = &Node{ID: "node-ab-cd-12"}
	assert.Equal(t, "abcd12", n.InstanceIdentifier())
}

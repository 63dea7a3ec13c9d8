package graph

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/shadegrid/internal/value"
	"lukechampine.com/blake3"
)

// Fingerprint returns a stable digest of everything that influences
// compiled output: node identities, definitions, stored values, and
// connections. Positions are excluded on purpose; moving a node around the
// canvas must not trigger a recompile.
func (g *Graph) Fingerprint() string {
	var b strings.Builder

	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		fmt.Fprintf(&b, "n|%s|%s\n", n.ID, n.Definition)

		names := make([]string, 0, len(n.values))
		for name := range n.values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v := n.values[name]
			if v.Kind() == value.KindScalar {
				fmt.Fprintf(&b, "v|%s|s|%s\n", name, value.FormatFloat(v.Float()))
			} else {
				parts := make([]string, 0, 3)
				for _, c := range v.Components(3) {
					parts = append(parts, value.FormatFloat(c))
				}
				fmt.Fprintf(&b, "v|%s|v|%s\n", name, strings.Join(parts, ","))
			}
		}
	}
	for _, id := range g.connOrder {
		c := g.connections[id]
		fmt.Fprintf(&b, "c|%s|%s\n", c.From, c.To)
	}

	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

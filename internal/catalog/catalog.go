// Package catalog holds the read-only library of node definitions: typed
// socket specs plus a per-backend source template. A Catalog is an explicit
// dependency of everything that consumes it; there is no process-wide
// registry.
package catalog

import (
	"fmt"

	"github.com/vk/shadegrid/internal/value"
)

// SocketType is the closed set of semantic socket types.
type SocketType string

const (
	TypeScalar  SocketType = "scalar"
	TypeVec3    SocketType = "vec3"
	TypeColor   SocketType = "color" // alias of vec3 for connection purposes
	TypeSampler SocketType = "sampler"
	TypeTexture SocketType = "texture"
)

// ParseSocketType maps a type keyword from a manifest onto the closed set.
func ParseSocketType(keyword string) (SocketType, error) {
	switch SocketType(keyword) {
	case TypeScalar, TypeVec3, TypeColor, TypeSampler, TypeTexture:
		return SocketType(keyword), nil
	default:
		return "", fmt.Errorf("unknown socket type %q", keyword)
	}
}

// Compatible reports whether a connection may be formed between sockets of
// the two types. Color and vec3 are interchangeable; everything else
// requires equality.
func Compatible(a, b SocketType) bool {
	if a == b {
		return true
	}
	return (a == TypeColor && b == TypeVec3) || (a == TypeVec3 && b == TypeColor)
}

// SocketSpec describes one input or output socket of a definition.
type SocketSpec struct {
	Name    string
	Type    SocketType
	Default *value.Value // only meaningful on inputs
}

// Definition is a reusable node blueprint: ordered socket specs and the
// source template the emitters instantiate per node instance.
type Definition struct {
	ID          string
	Description string
	Inputs      []*SocketSpec
	Outputs     []*SocketSpec
	Template    Template
	ColorPicker bool
}

// Input returns the input spec with the given name, or nil.
func (d *Definition) Input(name string) *SocketSpec {
	for _, in := range d.Inputs {
		if in.Name == name {
			return in
		}
	}
	return nil
}

// Catalog is an ordered, immutable-after-load collection of definitions.
type Catalog struct {
	defs  map[string]*Definition
	order []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{defs: make(map[string]*Definition)}
}

// Add registers a definition. Duplicate ids are a manifest authoring error.
func (c *Catalog) Add(def *Definition) error {
	if _, ok := c.defs[def.ID]; ok {
		return fmt.Errorf("duplicate definition id %q", def.ID)
	}
	c.defs[def.ID] = def
	c.order = append(c.order, def.ID)
	return nil
}

// Get looks up a definition by id. A missing id is not an error; callers
// degrade per their own policy.
func (c *Catalog) Get(id string) (*Definition, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// IDs returns definition ids in registration order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len reports the number of registered definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}

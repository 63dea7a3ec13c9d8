package compiler

import (
	"github.com/vk/shadegrid/internal/catalog"
)

// dialect is the seam between the backend-agnostic resolver and the two
// target languages. The emitters are structurally identical; everything
// that differs in syntax lives behind this interface.
type dialect interface {
	// typeName maps a semantic socket type onto the language's type name.
	typeName(t catalog.SocketType) string

	// vec3Ctor renders a 3-argument vector constructor call.
	vec3Ctor(x, y, z string) string

	// vec4Ctor renders the final color constructor from an RGB expression
	// and an alpha expression.
	vec4Ctor(rgb, alpha string) string

	// binding renders one intermediate variable binding statement.
	binding(varName string, t catalog.SocketType, expr string) string

	// templateText selects this backend's text from a definition template.
	templateText(t catalog.Template) string

	// defaultTexture and defaultSampler name the always-declared fallback
	// bindings used when a sampler/texture input is unconnected.
	defaultTexture() string
	defaultSampler() string

	// assemble wraps function declarations, binding statements and the
	// final color expression into the backend's document shape.
	assemble(funcTexts, body []string, finalExpr string) *Output

	// fallbackDocument is the fixed, always-valid document emitted when
	// the graph has no sink node.
	fallbackDocument() *Output
}

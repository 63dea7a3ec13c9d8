package compiler

import (
	"fmt"
	"strings"

	"github.com/vk/shadegrid/internal/catalog"
)

// glslDialect emits GLSL ES 300 as a split vertex/fragment bundle. The
// fragment stage mirrors the WGSL body shape with a GLSL preamble
// (precision qualifier, uniforms, in/out declarations) and assigns the
// final color to the shared output variable instead of returning it.
type glslDialect struct{}

func (glslDialect) typeName(t catalog.SocketType) string {
	switch t {
	case catalog.TypeScalar:
		return "float"
	case catalog.TypeVec3, catalog.TypeColor:
		return "vec3"
	case catalog.TypeTexture, catalog.TypeSampler:
		// GLSL ES combines texture and sampler into one object.
		return "sampler2D"
	default:
		return "float"
	}
}

func (glslDialect) vec3Ctor(x, y, z string) string {
	return fmt.Sprintf("vec3(%s, %s, %s)", x, y, z)
}

func (glslDialect) vec4Ctor(rgb, alpha string) string {
	return fmt.Sprintf("vec4(%s, %s)", rgb, alpha)
}

func (d glslDialect) binding(varName string, t catalog.SocketType, expr string) string {
	return fmt.Sprintf("%s %s = %s;", d.typeName(t), varName, expr)
}

func (glslDialect) templateText(t catalog.Template) string {
	return t.GLSL
}

func (glslDialect) defaultTexture() string { return "u_texture" }
func (glslDialect) defaultSampler() string { return "u_texture" }

// glslVertex is the fixed full-screen-triangle vertex stage.
const glslVertex = `#version 300 es

out vec2 v_uv;

void main() {
    vec2 uv = vec2(float((gl_VertexID << 1) & 2), float(gl_VertexID & 2));
    v_uv = uv;
    gl_Position = vec4(uv * 2.0 - 1.0, 0.0, 1.0);
}
`

// glslFragmentPreamble declares the uniforms and the global fragment
// coordinate that generated functions read. Templates may reference
// `u_time`, `u_resolution`, `u_pointer` and `frag_uv`.
const glslFragmentPreamble = `#version 300 es
precision highp float;

uniform float u_time;
uniform vec2 u_resolution;
uniform vec2 u_pointer;
uniform sampler2D u_texture;

in vec2 v_uv;
out vec4 fragColor;

vec2 frag_uv;
`

func (glslDialect) assemble(funcTexts, body []string, finalExpr string) *Output {
	var b strings.Builder
	b.WriteString(glslFragmentPreamble)

	for _, fn := range funcTexts {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(fn, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\nvoid main() {\n")
	b.WriteString("    frag_uv = v_uv;\n")
	for _, stmt := range body {
		b.WriteString("    ")
		b.WriteString(stmt)
		b.WriteString("\n")
	}
	b.WriteString("    fragColor = ")
	b.WriteString(finalExpr)
	b.WriteString(";\n}\n")

	return &Output{Backend: BackendGLSL, Vertex: glslVertex, Fragment: b.String()}
}

// fallbackDocument mirrors the WGSL fallback: a fixed time-varying gradient.
func (glslDialect) fallbackDocument() *Output {
	var b strings.Builder
	b.WriteString(glslFragmentPreamble)
	b.WriteString(`
void main() {
    frag_uv = v_uv;
    fragColor = vec4(frag_uv.x, frag_uv.y, 0.5 + 0.5 * sin(u_time), 1.0);
}
`)
	return &Output{Backend: BackendGLSL, Vertex: glslVertex, Fragment: b.String()}
}

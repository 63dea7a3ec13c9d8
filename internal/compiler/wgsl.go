package compiler

import (
	"fmt"
	"strings"

	"github.com/vk/shadegrid/internal/catalog"
)

// wgslDialect emits WGSL as a single self-contained module: uniform data,
// a full-screen-triangle vertex stage, the generated functions, and a
// fragment entry point returning the final color.
type wgslDialect struct{}

func (wgslDialect) typeName(t catalog.SocketType) string {
	switch t {
	case catalog.TypeScalar:
		return "f32"
	case catalog.TypeVec3, catalog.TypeColor:
		return "vec3<f32>"
	case catalog.TypeTexture:
		return "texture_2d<f32>"
	case catalog.TypeSampler:
		return "sampler"
	default:
		return "f32"
	}
}

func (wgslDialect) vec3Ctor(x, y, z string) string {
	return fmt.Sprintf("vec3<f32>(%s, %s, %s)", x, y, z)
}

func (wgslDialect) vec4Ctor(rgb, alpha string) string {
	return fmt.Sprintf("vec4<f32>(%s, %s)", rgb, alpha)
}

func (d wgslDialect) binding(varName string, t catalog.SocketType, expr string) string {
	return fmt.Sprintf("let %s: %s = %s;", varName, d.typeName(t), expr)
}

func (wgslDialect) templateText(t catalog.Template) string {
	return t.WGSL
}

func (wgslDialect) defaultTexture() string { return "u_texture" }
func (wgslDialect) defaultSampler() string { return "u_sampler" }

// wgslPreamble declares the fixed uniform data, the fallback texture
// bindings, and the module-scope fragment coordinate that generated
// functions read. Templates may reference `u.time`, `u.resolution`,
// `u.pointer` and `frag_uv`.
const wgslPreamble = `struct Uniforms {
    time: f32,
    resolution: vec2<f32>,
    pointer: vec2<f32>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(0) @binding(1) var u_texture: texture_2d<f32>;
@group(0) @binding(2) var u_sampler: sampler;

var<private> frag_uv: vec2<f32>;

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOut {
    var out: VertexOut;
    let uv = vec2<f32>(f32((index << 1u) & 2u), f32(index & 2u));
    out.position = vec4<f32>(uv * 2.0 - 1.0, 0.0, 1.0);
    out.uv = uv;
    return out;
}
`

func (wgslDialect) assemble(funcTexts, body []string, finalExpr string) *Output {
	var b strings.Builder
	b.WriteString(wgslPreamble)

	for _, fn := range funcTexts {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(fn, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n@fragment\nfn fs_main(in: VertexOut) -> @location(0) vec4<f32> {\n")
	b.WriteString("    frag_uv = in.uv;\n")
	for _, stmt := range body {
		b.WriteString("    ")
		b.WriteString(stmt)
		b.WriteString("\n")
	}
	b.WriteString("    return ")
	b.WriteString(finalExpr)
	b.WriteString(";\n}\n")

	return &Output{Backend: BackendWGSL, Module: b.String()}
}

// fallbackDocument is a fixed time-varying gradient, emitted whenever the
// graph cannot produce a program of its own.
func (wgslDialect) fallbackDocument() *Output {
	var b strings.Builder
	b.WriteString(wgslPreamble)
	b.WriteString(`
@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    frag_uv = in.uv;
    return vec4<f32>(frag_uv.x, frag_uv.y, 0.5 + 0.5 * sin(u.time), 1.0);
}
`)
	return &Output{Backend: BackendWGSL, Module: b.String()}
}

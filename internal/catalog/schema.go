package catalog

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Manifest Schemas ---

// socketBlock represents an `input` or `output` block inside a definition.
type socketBlock struct {
	Name    string         `hcl:"name,label"`
	Type    hcl.Expression `hcl:"type"`
	Default hcl.Expression `hcl:"default,optional"`
}

// templateBlock represents the `template` block of a definition. Both
// backends are required; a definition that cannot be emitted for one
// backend would silently poison half the compiler's output space.
type templateBlock struct {
	WGSL string `hcl:"wgsl"`
	GLSL string `hcl:"glsl"`
}

// definitionBlock represents a `definition` block from a catalog manifest.
type definitionBlock struct {
	ID          string         `hcl:"id,label"`
	Description string         `hcl:"description,optional"`
	ColorPicker bool           `hcl:"color_picker,optional"`
	Inputs      []*socketBlock `hcl:"input,block"`
	Outputs     []*socketBlock `hcl:"output,block"`
	Template    *templateBlock `hcl:"template,block"`
}

// fileRoot decodes all top-level blocks from a single manifest file.
type fileRoot struct {
	Definitions []*definitionBlock `hcl:"definition,block"`
	Remain      hcl.Body           `hcl:",remain"`
}

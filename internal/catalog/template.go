package catalog

import (
	"fmt"
	"strings"
)

// PlaceholderToken is the single documented coupling contract between
// authored templates and the emitters: every function name in a template
// embeds this token, and the emitter substitutes it with an identifier
// derived from the node instance id so that multiple instances of the same
// definition never collide.
//
// The full naming contract the emitters call against: a single-output
// definition declares `<definition id>_NODE_ID`, and a multi-output
// definition declares one `<definition id>_NODE_ID_<lowercased output
// name>` function per output. Definition.Validate enforces this at
// catalog-load time.
const PlaceholderToken = "NODE_ID"

// Template carries one source-code template per target backend.
type Template struct {
	WGSL string
	GLSL string
}

// Validate checks the placeholder contract at catalog-load time rather
// than at emit time, so a broken manifest fails loudly and early.
func (t Template) Validate() error {
	if t.WGSL != "" && !strings.Contains(t.WGSL, PlaceholderToken) {
		return fmt.Errorf("wgsl template is missing the %s placeholder", PlaceholderToken)
	}
	if t.GLSL != "" && !strings.Contains(t.GLSL, PlaceholderToken) {
		return fmt.Errorf("glsl template is missing the %s placeholder", PlaceholderToken)
	}
	return nil
}

// Validate checks the template against the full naming contract: the
// placeholder must be present, and every function the emitters will call
// for this definition must be declared in each non-empty backend text.
func (d *Definition) Validate() error {
	if err := d.Template.Validate(); err != nil {
		return err
	}

	var expected []string
	switch len(d.Outputs) {
	case 0:
		// Sinks carry no callable functions.
	case 1:
		expected = []string{d.ID + "_" + PlaceholderToken}
	default:
		for _, out := range d.Outputs {
			expected = append(expected, d.ID+"_"+PlaceholderToken+"_"+strings.ToLower(out.Name))
		}
	}

	for backend, text := range map[string]string{"wgsl": d.Template.WGSL, "glsl": d.Template.GLSL} {
		if text == "" {
			continue
		}
		for _, name := range expected {
			if !strings.Contains(text, name) {
				return fmt.Errorf("%s template does not declare function %q", backend, name)
			}
		}
	}
	return nil
}

// Substitute expands the placeholder in a template text with a
// per-instance identifier.
func Substitute(text, instanceID string) string {
	return strings.ReplaceAll(text, PlaceholderToken, instanceID)
}

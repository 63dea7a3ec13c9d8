package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/shadegrid/internal/ctxlog"
	"github.com/vk/shadegrid/internal/value"
)

// Load parses every .hcl manifest under the given paths into a Catalog.
// Files are visited in sorted path order so a catalog loads identically
// regardless of filesystem enumeration order.
func Load(ctx context.Context, paths ...string) (*Catalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Catalog loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	logger.Debug("Discovered catalog manifests.", "count", len(files))

	cat := New()
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %w", file, diags)
		}

		for _, block := range root.Definitions {
			def, err := translateDefinition(ctx, block)
			if err != nil {
				return nil, fmt.Errorf("in manifest %s: %w", file, err)
			}
			if err := cat.Add(def); err != nil {
				return nil, fmt.Errorf("in manifest %s: %w", file, err)
			}
		}
	}

	logger.Debug("Catalog loading complete.", "definitions", cat.Len())
	return cat, nil
}

// translateDefinition converts the HCL-specific schema into the catalog model,
// resolving socket types and evaluating default value expressions.
func translateDefinition(ctx context.Context, block *definitionBlock) (*Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Translating definition.", "id", block.ID)

	def := &Definition{
		ID:          block.ID,
		Description: block.Description,
		ColorPicker: block.ColorPicker,
	}

	for _, in := range block.Inputs {
		spec, err := translateSocket(in, true)
		if err != nil {
			return nil, fmt.Errorf("definition %q, input %q: %w", block.ID, in.Name, err)
		}
		def.Inputs = append(def.Inputs, spec)
	}
	for _, out := range block.Outputs {
		spec, err := translateSocket(out, false)
		if err != nil {
			return nil, fmt.Errorf("definition %q, output %q: %w", block.ID, out.Name, err)
		}
		def.Outputs = append(def.Outputs, spec)
	}

	if block.Template != nil {
		def.Template = Template{WGSL: block.Template.WGSL, GLSL: block.Template.GLSL}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("definition %q: %w", block.ID, err)
		}
	}

	return def, nil
}

func translateSocket(block *socketBlock, isInput bool) (*SocketSpec, error) {
	socketType, err := typeExprToSocketType(block.Type)
	if err != nil {
		return nil, err
	}

	spec := &SocketSpec{Name: block.Name, Type: socketType}

	if block.Default != nil {
		val, diags := block.Default.Value(nil)
		// A default is only meaningful if it evaluates without error and is not null.
		if !diags.HasErrors() && !val.IsNull() {
			if !isInput {
				return nil, fmt.Errorf("output sockets cannot carry a default")
			}
			stored, err := value.FromCty(val)
			if err != nil {
				return nil, fmt.Errorf("invalid default: %w", err)
			}
			spec.Default = &stored
		}
	}

	return spec, nil
}

// typeExprToSocketType resolves a bare type keyword expression (scalar,
// vec3, color, sampler, texture) onto the closed socket type set.
func typeExprToSocketType(expr hcl.Expression) (SocketType, error) {
	if expr == nil {
		return "", fmt.Errorf("socket type is required")
	}
	traversal, ok := expr.(*hclsyntax.ScopeTraversalExpr)
	if !ok {
		return "", fmt.Errorf("socket type must be a bare keyword, got %T", expr)
	}
	if len(traversal.Traversal) != 1 {
		return "", fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
	}
	return ParseSocketType(traversal.Traversal.RootName())
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}

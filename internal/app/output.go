package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/shadegrid/internal/compiler"
)

// writeOutput delivers a compiled document: to stdout-style writer when no
// output path is configured, otherwise to files. Split-stage bundles write
// one file per stage next to the configured path.
func (a *App) writeOutput(out *compiler.Output) error {
	if a.config.OutputPath == "" {
		if out.Backend == compiler.BackendWGSL {
			_, err := fmt.Fprint(a.outW, out.Module)
			return err
		}
		if _, err := fmt.Fprintf(a.outW, "// --- vertex ---\n%s", out.Vertex); err != nil {
			return err
		}
		_, err := fmt.Fprintf(a.outW, "// --- fragment ---\n%s", out.Fragment)
		return err
	}

	if out.Backend == compiler.BackendWGSL {
		a.logger.Info("Writing compiled module.", "path", a.config.OutputPath)
		return os.WriteFile(a.config.OutputPath, []byte(out.Module), 0644)
	}

	base := strings.TrimSuffix(a.config.OutputPath, filepath.Ext(a.config.OutputPath))
	vertPath := base + ".vert"
	fragPath := base + ".frag"
	a.logger.Info("Writing compiled bundle.", "vertex", vertPath, "fragment", fragPath)
	if err := os.WriteFile(vertPath, []byte(out.Vertex), 0644); err != nil {
		return err
	}
	return os.WriteFile(fragPath, []byte(out.Fragment), 0644)
}

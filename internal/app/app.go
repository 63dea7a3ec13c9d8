// Package app wires configuration, logging, loading and compilation into
// one lifecycle: load the catalog and graph document, compile for the
// selected backend, and either write the result once or serve it live.
package app

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/vk/shadegrid/internal/catalog"
	"github.com/vk/shadegrid/internal/compiler"
	"github.com/vk/shadegrid/internal/ctxlog"
	"github.com/vk/shadegrid/internal/hclgraph"
	"lukechampine.com/blake3"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	backend compiler.Backend
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. Logs go to logW
// so compiled source written to outW stays clean.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	// NewConfig already validated the selector; re-parsing cannot fail.
	backend, _ := compiler.ParseBackend(cfg.Backend)

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		backend: backend,
	}
}

// Run executes the main application logic based on the configuration:
// one-shot compile by default, watch-and-serve when Serve is set.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.Serve {
		return a.serve(ctx)
	}

	result, err := a.compileOnce(ctx)
	if err != nil {
		return err
	}
	if err := a.writeOutput(result.Output); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// compileResult pairs a compiled document with a digest of its text, so
// watch mode can skip redundant rebroadcasts.
type compileResult struct {
	Output      *compiler.Output
	Fingerprint string
}

// compileOnce loads the catalog and graph document from disk and compiles
// them for the configured backend.
func (a *App) compileOnce(ctx context.Context) (*compileResult, error) {
	cat, err := catalog.Load(ctx, a.config.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if cat.Len() == 0 {
		a.logger.Warn("Catalog is empty, every node will be skipped.", "path", a.config.CatalogPath)
	}

	g, err := hclgraph.Load(ctx, cat, a.config.GraphPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph document: %w", err)
	}
	a.logger.Debug("Graph document ready.", "nodes", g.NodeCount(), "graph_fingerprint", g.Fingerprint())

	out, err := compiler.Compile(ctx, g, cat, a.backend)
	if err != nil {
		return nil, fmt.Errorf("compilation failed: %w", err)
	}
	return &compileResult{Output: out, Fingerprint: documentFingerprint(out)}, nil
}

// documentFingerprint digests the compiled document text itself rather than
// the graph that produced it. Watch mode reloads the catalog too, and a
// template edit changes the output without touching the graph; hashing the
// output captures exactly "would this broadcast be redundant".
func documentFingerprint(out *compiler.Output) string {
	var b strings.Builder
	b.WriteString(string(out.Backend))

	texts := out.Texts()
	names := make([]string, 0, len(texts))
	for name := range texts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "\n--%s--\n%s", name, texts[name])
	}

	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

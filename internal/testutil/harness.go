// Package testutil provides the shared harness for integration-style
// tests: it materializes HCL files into a temp directory and runs the full
// load-and-compile pipeline against them.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/shadegrid/internal/catalog"
	"github.com/vk/shadegrid/internal/compiler"
	"github.com/vk/shadegrid/internal/ctxlog"
	"github.com/vk/shadegrid/internal/graph"
	"github.com/vk/shadegrid/internal/hclgraph"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a compile pipeline run.
type HarnessResult struct {
	Catalog   *catalog.Catalog
	Graph     *graph.Graph
	Output    *compiler.Output
	Err       error
	LogOutput string
}

// RunCompileTest materializes the given files (keys are paths relative to
// a temp root, e.g. "catalog/nodes.hcl" and "graph.hcl"), loads the
// catalog and graph document, and compiles for the given backend. Load
// failures are reported in Err with the later stages left nil.
func RunCompileTest(t *testing.T, files map[string]string, backend compiler.Backend) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	logBuffer := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	result := &HarnessResult{}
	defer func() { result.LogOutput = logBuffer.String() }()

	cat, err := catalog.Load(ctx, filepath.Join(tmpDir, "catalog"))
	if err != nil {
		result.Err = err
		return result
	}
	result.Catalog = cat

	g, err := hclgraph.Load(ctx, cat, filepath.Join(tmpDir, "graph.hcl"))
	if err != nil {
		result.Err = err
		return result
	}
	result.Graph = g

	out, err := compiler.Compile(ctx, g, cat, backend)
	if err != nil {
		result.Err = err
		return result
	}
	result.Output = out
	return result
}

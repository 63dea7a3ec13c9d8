package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("positional graph path with defaults", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"scene.hcl"}, &out)
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "scene.hcl", cfg.GraphPath)
		assert.Equal(t, "catalog", cfg.CatalogPath)
		assert.Equal(t, "wgsl", cfg.Backend)
		assert.Equal(t, "", cfg.OutputPath)
		assert.False(t, cfg.Serve)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("graph flag takes precedence over positional", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-graph", "a.hcl", "b.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "a.hcl", cfg.GraphPath)
	})

	t.Run("shorthand graph flag", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-g", "scene.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "scene.hcl", cfg.GraphPath)
	})

	t.Run("all options decode", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{
			"-catalog", "defs",
			"-backend", "GLSL",
			"-o", "shader",
			"-serve",
			"-port", "9000",
			"-log-format", "json",
			"-log-level", "debug",
			"scene.hcl",
		}, &out)
		require.NoError(t, err)
		assert.Equal(t, "defs", cfg.CatalogPath)
		assert.Equal(t, "glsl", cfg.Backend)
		assert.Equal(t, "shader", cfg.OutputPath)
		assert.True(t, cfg.Serve)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("no graph path prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("help exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"-h"}, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
	})

	t.Run("invalid backend", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-backend", "hlsl", "scene.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
		assert.Contains(t, exitErr.Message, "unknown backend")
	})

	t.Run("invalid log format", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-format", "xml", "scene.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid log level", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-level", "loud", "scene.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("unknown flag", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-frobnicate", "scene.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})
}

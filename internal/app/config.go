package app

import (
	"errors"

	"github.com/vk/shadegrid/internal/compiler"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CatalogPath string // hcl definition manifests
	GraphPath   string // hcl graph document

	Backend    string
	OutputPath string // empty writes to the app's output writer

	Serve bool
	Port  int

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	if cfg.CatalogPath == "" {
		return nil, errors.New("CatalogPath is a required configuration field and cannot be empty")
	}
	if _, err := compiler.ParseBackend(cfg.Backend); err != nil {
		return nil, err
	}
	return &cfg, nil
}

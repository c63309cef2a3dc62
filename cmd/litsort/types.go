package main

import (
	"github.com/litsort/litsort/internal/config"
	"github.com/litsort/litsort/internal/pipeline"
)

// ProcessResponse is the result of one batch run.
type ProcessResponse struct {
	Directory   string                    `json:"directory"`
	DryRun      bool                      `json:"dry_run,omitempty"`
	Processed   int                       `json:"processed"`
	Renamed     int                       `json:"renamed"`
	Problematic int                       `json:"problematic"`
	Categories  map[string]map[string]int `json:"categories,omitempty"`
	Ledger      string                    `json:"ledger,omitempty"`
	References  []string                  `json:"references,omitempty"`
	Interrupted bool                      `json:"interrupted,omitempty"`

	// Tasks carries the per-document outcomes on dry runs, where the
	// filesystem shows nothing.
	Tasks []*pipeline.Task `json:"tasks,omitempty"`
}

// SourcesResponse lists the effective source chain.
type SourcesResponse struct {
	Sources []config.SourceSpec `json:"sources"`
}

// ConfigShowResponse is the effective configuration and where it came from.
type ConfigShowResponse struct {
	Options          *config.Options `json:"options"`
	ConfigFile       string          `json:"config_file,omitempty"`
	GlobalConfigPath string          `json:"global_config_path"`
	Credentials      map[string]bool `json:"credentials"`
}

// ABOUTME: Interfaces defining dependencies for the TUI package
// ABOUTME: Allows clean separation and easy testing with mocks

package tui

import (
	"context"

	"touch-composer/config"
	"touch-composer/library"
	"touch-composer/topk"
)

// ConfigProvider provides thread-safe access to the search configuration.
// config.SharedConfig satisfies this directly.
type ConfigProvider interface {
	Get() config.SearchConfig
	Update(cfg config.SearchConfig)
}

// SearchRunner runs a composition search with progress updates.
type SearchRunner interface {
	Run(ctx context.Context, cfg ConfigProvider, updates chan<- Update, epoch int) error
}

// LibraryLoader loads a method library from disk.
type LibraryLoader interface {
	Load(path string) ([]library.Entry, error)
}

// Logger provides debug logging capability.
type Logger interface {
	Debugf(format string, args ...interface{})
}

// Update represents a progress update from a running search.
type Update struct {
	Candidates int
	Accepted   int
	Iterations int
	GenPerSec  float64
	Progress   float64
	Top        []topk.Candidate
	Epoch      int
}

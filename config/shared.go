package config

import "sync"

// SharedConfig wraps SearchConfig with a mutex for thread-safe access between
// the search driver and the TUI, which can retune weights and thresholds
// while a search is running.
type SharedConfig struct {
	mu     sync.RWMutex
	config SearchConfig
}

// NewSharedConfig wraps an initial config for concurrent access.
func NewSharedConfig(cfg SearchConfig) *SharedConfig {
	return &SharedConfig{config: cfg}
}

// Get returns a copy of the current config (thread-safe read).
func (sc *SharedConfig) Get() SearchConfig {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	return sc.config
}

// Update replaces the current config (thread-safe write).
func (sc *SharedConfig) Update(cfg SearchConfig) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
}

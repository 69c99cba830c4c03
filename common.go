// ABOUTME: Shared initialization code for all modes (CLI, TUI, View)
// ABOUTME: Provides common library loading, config setup, and table-building logic

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"touch-composer/config"
	"touch-composer/library"
	"touch-composer/method"
	"touch-composer/music"
	"touch-composer/node"
	"touch-composer/notation"
	"touch-composer/pool"
	"touch-composer/row"
)

// Debug logger - writes to file for debugging
var debugLog *log.Logger

// RunOptions contains command-line options for all modes (CLI, TUI, View).
type RunOptions struct {
	LibraryPath string
	ConfigPath  string
	DryRun      bool
	OutputPath  string
	DebugLog    bool
	Seed        string // overrides the config file's seed when non-empty
}

// SearchContext holds everything a search needs once the library and config
// are loaded: the resolved methods, the precomputed node table and composite
// methods (with music already cached on it), and a thread-safe config handle.
type SearchContext struct {
	Entries      []library.Entry
	Methods      []*method.Method
	Table        *node.Table
	Composites   []method.CompositeMethod
	Config       config.SearchConfig
	SharedConfig *config.SharedConfig
}

// isNicePartEnd is the default "nice part end" predicate: tenors (7, 8)
// ringing home in the last two positions.
func isNicePartEnd(r row.Row) bool {
	return r[6] == 7 && r[7] == 8
}

// InitializeSearch loads the library and config, resolves the configured
// method codes against the library, and builds the node/composite/music
// tables a search needs before it can start.
func InitializeSearch(opts RunOptions) (*SearchContext, error) {
	entries, err := library.Load(opts.LibraryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.GetConfigPath()
	}

	cfg, _ := config.LoadConfig(configPath)
	if cfg.LibraryPath == "" {
		cfg.LibraryPath = opts.LibraryPath
	}

	if opts.Seed != "" {
		cfg.Seed = opts.Seed
	}

	methods, err := resolveMethods(entries, cfg)
	if err != nil {
		return nil, err
	}

	if len(methods) == 0 {
		return nil, errors.New("no methods selected: add entries to the config's methods list")
	}

	reg := method.NewRegistry()
	composites := reg.BuildComposites(methods)
	method.Rebase(composites, reg.PNCount())

	tbl := node.Build()
	tbl.BuildLinks(reg.Permutations())
	tbl.MarkNicePartEnds(isNicePartEnd)

	defs, err := resolveMusic(cfg)
	if err != nil {
		return nil, err
	}

	workers := pool.NewWorkerPool(len(tbl.Leadheads))
	music.RebuildWithPool(tbl, defs, composites, workers)
	workers.Close()

	sharedConfig := config.NewSharedConfig(cfg)

	return &SearchContext{
		Entries:      entries,
		Methods:      methods,
		Table:        tbl,
		Composites:   composites,
		Config:       cfg,
		SharedConfig: sharedConfig,
	}, nil
}

func resolveMethods(entries []library.Entry, cfg config.SearchConfig) ([]*method.Method, error) {
	byCode := make(map[string]library.Entry, len(entries))
	for _, e := range entries {
		byCode[e.Code] = e
	}

	methods := make([]*method.Method, 0, len(cfg.Methods))

	for _, ref := range cfg.Methods {
		entry, ok := byCode[ref.Code]
		if !ok {
			return nil, fmt.Errorf("method code %q not found in library", ref.Code)
		}

		firstHalf, err := notation.Parse(entry.Notation)
		if err != nil {
			return nil, fmt.Errorf("parsing notation for %q: %w", ref.Code, err)
		}

		m, err := method.New(entry.Name, entry.Code, firstHalf)
		if err != nil {
			return nil, fmt.Errorf("building method %q: %w", ref.Code, err)
		}

		methods = append(methods, m)
	}

	return methods, nil
}

func resolveMusic(cfg config.SearchConfig) ([]music.Definition, error) {
	defs := make([]music.Definition, 0, len(cfg.Music))

	for _, rule := range cfg.Music {
		patterns := make([]music.Pattern, 0, len(rule.Patterns))
		for _, p := range rule.Patterns {
			patterns = append(patterns, music.ParsePattern(p))
		}

		defs = append(defs, music.Definition{Name: rule.Name, Score: rule.Score, Patterns: patterns})
	}

	return defs, nil
}

// SetupDebugLog initializes debug logging to the specified file.
func SetupDebugLog(filename string) error {
	if err := InitDebugLog(filename); err != nil {
		return fmt.Errorf("failed to initialize debug log: %w", err)
	}

	if filename == "touch-composer-debug.log" {
		fileInfo, _ := os.Stdout.Stat()
		if (fileInfo.Mode() & os.ModeCharDevice) != 0 {
			fmt.Printf("Debug logging enabled: %s\n", filename)
		}
	}

	return nil
}

// InitDebugLog initializes debug logging to a file.
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages to file if debug logger is enabled.
func debugf(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// truncate truncates a string to maxLen characters, adding "..." if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}

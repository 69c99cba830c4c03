// ABOUTME: Entry point for touch-composer application
// ABOUTME: Handles command-line parsing, profiling, and routing to CLI, TUI, or library-view modes

// Package main provides the entry point for touch-composer, a half-lead
// spliced touch composition search engine for eight-bell change ringing.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"touch-composer/config"
	"touch-composer/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	visual := flag.Bool("visual", false, "run in visual/interactive mode with live parameter tuning")
	view := flag.Bool("view", false, "run in read-only method library browser mode")
	debug := flag.Bool("debug", false, "enable debug logging to touch-composer-debug.log")
	dryRun := flag.Bool("dry-run", false, "search without writing the best composition to disk")
	output := flag.String("output", "", "write the best composition to this file (default: composition.txt)")
	configPath := flag.String("config", "", "path to the search config TOML file (default: ./touch-composer.toml)")
	seed := flag.String("seed", "", "start-composition seed: whitespace-separated leads, overrides the config file's seed")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: touch-composer [flags] <library.zip>")
		fmt.Println("Example: touch-composer methods.zip --visual")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		return 1
	}

	libraryPath := args[0]

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}

	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}

	if *view {
		if err := RunLibraryWatchMode(libraryPath); err != nil {
			log.Printf("Library view error: %v", err)

			return 1
		}

		return 0
	}

	opts := RunOptions{
		LibraryPath: libraryPath,
		ConfigPath:  *configPath,
		DryRun:      *dryRun,
		OutputPath:  *output,
		DebugLog:    *debug,
		Seed:        *seed,
	}

	if *visual {
		return runVisual(opts)
	}

	if err := RunCLI(opts); err != nil {
		log.Printf("CLI error: %v", err)

		return 1
	}

	return 0
}

// runVisual loads the library and config once, then hands off to the TUI
// package with the concrete adapters it needs to drive a live search.
func runVisual(opts RunOptions) int {
	if opts.DebugLog {
		if err := SetupDebugLog("touch-composer-debug.log"); err != nil {
			log.Printf("Failed to setup debug log: %v", err)

			return 1
		}
	}

	sctx, err := InitializeSearch(opts)
	if err != nil {
		log.Printf("Init error: %v", err)

		return 1
	}

	tuiOpts := tui.Options{
		LibraryPath: opts.LibraryPath,
		OutputPath:  opts.OutputPath,
		DryRun:      opts.DryRun,
		DebugLog:    opts.DebugLog,
	}

	deps := tui.Dependencies{
		ConfigProvider: sctx.SharedConfig,
		SearchRunner:   searchRunnerAdapter{ctx: sctx},
		LibraryLoader:  libraryLoaderAdapter{},
		Logger:         loggerAdapter{},
		ConfigPath:     resolvedConfigPath(opts.ConfigPath),
	}

	if err := tui.Run(tuiOpts, deps); err != nil {
		log.Printf("TUI error: %v", err)

		return 1
	}

	return 0
}

func resolvedConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}

	return config.GetConfigPath()
}

// setupCPUProfile starts CPU profiling, returns cleanup function.
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file.
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}

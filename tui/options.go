// ABOUTME: TUI mode configuration and command-line options
// ABOUTME: Defines input parameters for running the TUI

package tui

// Options contains configuration for running the TUI.
type Options struct {
	LibraryPath string // Path to the method library zip
	OutputPath  string // Path for saving the accepted composition
	DryRun      bool   // If true, don't save the composition to disk
	DebugLog    bool   // Enable debug logging to file
}

// Dependencies holds all external dependencies for the TUI.
// This allows for clean dependency injection and easy testing.
type Dependencies struct {
	ConfigProvider ConfigProvider
	SearchRunner   SearchRunner
	LibraryLoader  LibraryLoader
	Logger         Logger
	ConfigPath     string
}

// ABOUTME: CLI mode implementation for non-interactive composition search
// ABOUTME: Handles progress display, result output, and signal handling for command-line usage

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"touch-composer/search"
	"touch-composer/topk"
)

// isTTY checks if the given file is a terminal.
func isTTY(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}

	return (stat.Mode() & os.ModeCharDevice) != 0
}

// RunCLI executes CLI mode: load the library and config, run the search to
// completion (or until Ctrl+C), print the top-K table, and persist the best
// composition.
func RunCLI(opts RunOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog("touch-composer-debug.log"); err != nil {
			return err
		}
	}

	sctx, err := InitializeSearch(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stop
		cancel()
	}()

	top := topk.New(sctx.Config.TopK)
	d := search.NewDriver(sctx.Table, sctx.Composites, sctx.Methods, toSearchConfig(sctx.Config), top)

	if sctx.Config.Seed != "" {
		methodIdx, calls, err := search.ParseSeed(sctx.Config.Seed, sctx.Methods, sctx.Config.LeadheadOnly)
		if err != nil {
			return fmt.Errorf("parsing seed: %w", err)
		}

		d.ApplySeed(methodIdx, calls)
	}

	fmt.Printf("\nLoaded %d methods; searching %d leads/part x %d parts... (press Ctrl+C to stop early)\n",
		len(sctx.Methods), sctx.Config.LeadsPerPart, sctx.Config.Parts)

	runSearchWithProgress(ctx, d, top)

	if err := reportResults(sctx, opts, top); err != nil {
		return err
	}

	return nil
}

// runSearchWithProgress drives d.Run to completion on a background
// goroutine, printing a self-overwriting status line on TTYs at
// statsInterval, and silently otherwise.
func runSearchWithProgress(ctx context.Context, d *search.Driver, _ *topk.Buffer) {
	startTime := time.Now()
	isTerminal := isTTY(os.Stdout)

	done := make(chan error, 1)

	go func() { done <- d.Run(ctx) }()

	var ticker *time.Ticker
	if isTerminal {
		ticker = time.NewTicker(statsInterval)
		defer ticker.Stop()
	}

loop:
	for {
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				debugf("[search] run ended: %v", err)
			}

			break loop

		case <-tickerChan(ticker):
			fmt.Printf("\r%s %s     ", formatElapsed(time.Since(startTime)), d)
		}
	}

	if isTerminal {
		fmt.Print("\r\033[K")
	}

	fmt.Printf("\nSearch complete in %v: %d candidates, %d accepted.\n",
		time.Since(startTime).Round(time.Millisecond), d.Candidates, d.Accepted)
}

// reportResults prints the top-K table and persists the best composition
// to disk (unless --dry-run).
func reportResults(sctx *SearchContext, opts RunOptions, top *topk.Buffer) error {
	items := top.Items()
	if len(items) == 0 {
		fmt.Println("\nNo compositions found.")
		return nil
	}

	fmt.Printf("\nTop %d compositions:\n\n", len(items))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(w, "#\tScore\tMusic\tCOM\tBalance"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if _, err := fmt.Fprintln(w, "---\t-----\t-----\t---\t-------"); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for i, c := range items {
		if _, err := fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d%%\n", i+1, c.Score, c.Music, c.COM, c.Balance); err != nil {
			return fmt.Errorf("failed to write result row %d: %w", i+1, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush results: %w", err)
	}

	best := items[0]

	fmt.Println()
	fmt.Print(FormatComposition(best, sctx.Methods, sctx.Composites, sctx.Config.Parts))

	if opts.DryRun {
		fmt.Println("\n--dry-run mode: composition not written")
		return nil
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = "composition.txt"
	}

	if err := os.WriteFile(outputPath, []byte(FormatComposition(best, sctx.Methods, sctx.Composites, sctx.Config.Parts)), 0o644); err != nil {
		return fmt.Errorf("failed to write composition: %w", err)
	}

	fmt.Printf("\nSaved best composition to: %s\n", outputPath)

	return nil
}

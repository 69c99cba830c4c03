// ABOUTME: Adapter implementations bridging main package plumbing to tui interface contracts

package main

import (
	"context"
	"time"

	"touch-composer/config"
	"touch-composer/library"
	"touch-composer/search"
	"touch-composer/topk"
	"touch-composer/tui"
)

// libraryLoaderAdapter adapts library.Load to tui.LibraryLoader.
type libraryLoaderAdapter struct{}

func (libraryLoaderAdapter) Load(path string) ([]library.Entry, error) {
	return library.Load(path)
}

// loggerAdapter adapts the package-level debugf to tui.Logger.
type loggerAdapter struct{}

func (loggerAdapter) Debugf(format string, args ...interface{}) {
	debugf(format, args...)
}

// searchRunnerAdapter drives a search.Driver for the TUI, reporting progress
// through the Update channel at the same cadence the CLI's status line uses.
type searchRunnerAdapter struct {
	ctx *SearchContext
}

func (a searchRunnerAdapter) Run(ctx context.Context, provider tui.ConfigProvider, updates chan<- tui.Update, epoch int) error {
	cfg := provider.Get()

	top := topk.New(cfg.TopK)
	if top.Len() == 0 && cfg.TopK == 0 {
		top = topk.New(topk.DefaultK)
	}

	d := search.NewDriver(a.ctx.Table, a.ctx.Composites, a.ctx.Methods, toSearchConfig(cfg), top)

	if cfg.Seed != "" {
		if methodIdx, calls, err := search.ParseSeed(cfg.Seed, a.ctx.Methods, cfg.LeadheadOnly); err == nil {
			d.ApplySeed(methodIdx, calls)
		} else {
			debugf("[search] bad seed %q: %v", cfg.Seed, err)
		}
	}

	done := make(chan error, 1)

	go func() { done <- d.Run(ctx) }()

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	start := time.Now()

	for {
		select {
		case err := <-done:
			sendProgress(updates, d, top, epoch, start)
			return err

		case <-ticker.C:
			sendProgress(updates, d, top, epoch, start)
		}
	}
}

func sendProgress(updates chan<- tui.Update, d *search.Driver, top *topk.Buffer, epoch int, start time.Time) {
	elapsed := time.Since(start).Seconds()

	rate := 0.0
	if elapsed > 0 {
		rate = float64(d.Candidates) / elapsed
	}

	select {
	case updates <- tui.Update{
		Candidates: d.Candidates,
		Accepted:   d.Accepted,
		Iterations: d.Iterations,
		GenPerSec:  rate,
		Progress:   d.Progress(),
		Top:        top.Items(),
		Epoch:      epoch,
	}:
	default:
	}
}

func toSearchConfig(cfg config.SearchConfig) search.Config {
	return search.Config{
		LeadsPerPart:            cfg.LeadsPerPart,
		Parts:                   cfg.Parts,
		TenorsTogether:          cfg.TenorsTogether,
		NicePartEnds:            cfg.NicePartEnds,
		OptimumBalance:          cfg.OptimumBalance,
		LeadheadOnly:            cfg.LeadheadOnly,
		Calls:                   cfg.Calls,
		MinScore:                cfg.MinScore,
		MinCOM:                  cfg.MinCOM,
		MinBalance:              cfg.MinBalance,
		COMScoreWeight:          cfg.COMScoreWeight,
		BalanceScoreWeight:      cfg.BalanceScoreWeight,
		MinPartLength:           cfg.MinPartLength,
		MaxPartLength:           cfg.MaxPartLength,
		MaxMethodsAtRepeatLimit: 100,
	}
}

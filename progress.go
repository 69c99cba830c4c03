// ABOUTME: Shared progress-display timing and formatting helpers
// ABOUTME: Used by both the CLI status line and the TUI's update cadence

package main

import (
	"fmt"
	"time"
)

// statsInterval is how often the CLI status line refreshes and the TUI's
// searchRunnerAdapter pushes progress updates, matching the search
// driver's own internal checkStats cadence (spec §5: "whenever checkStats
// fires (every ≈500 ms)").
const statsInterval = 500 * time.Millisecond

// formatElapsed renders a duration right-aligned to 6 characters, so the
// CLI status line doesn't jitter in width as the search runs long enough
// to cross a minute boundary.
func formatElapsed(d time.Duration) string {
	var s string

	if d >= time.Minute {
		s = fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	} else {
		s = fmt.Sprintf("%ds", int(d.Seconds()))
	}

	return fmt.Sprintf("%6s", s)
}

// tickerChan returns t.C, or a channel that never fires when t is nil (for
// non-TTY output, where the CLI skips the status line entirely).
func tickerChan(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}

	return t.C
}

// ABOUTME: Persists the best composition found by a TUI session

package tui

import (
	"fmt"
	"os"
	"strings"

	"touch-composer/topk"
)

// writeBest writes a plain-text summary of a candidate: its score and the
// composite-method/call choice made at each lead, as raw indices. Unlike
// the CLI output path, it does not render method abbreviations or call
// markers; the TUI persists just enough to resume or audit a run.
func writeBest(path string, c topk.Candidate) error {
	var b strings.Builder

	fmt.Fprintf(&b, "score=%d music=%d com=%d balance=%d\n", c.Score, c.Music, c.COM, c.Balance)

	for i, lead := range c.Leads {
		fmt.Fprintf(&b, "%d\tmethod=%d\tcall=%d\n", i, lead.CompositeIdx, lead.Call)
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

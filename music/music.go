// Package music scores rows and leads against a named set of pattern
// definitions, and caches the result on the node table so the search
// driver can total a lead's music with a single table lookup (spec §4.3).
package music

import (
	"touch-composer/method"
	"touch-composer/node"
	"touch-composer/pool"
	"touch-composer/row"
)

// wildcard is the 'X' pattern cell: matches any bell.
const wildcard = 0

// Pattern is one fixed-stage row pattern, e.g. "XXXX5678" parsed into
// eight cells where a non-zero cell pins a specific bell to that position.
type Pattern [row.Stage]int8

// ParsePattern builds a Pattern from an eight-character string using the
// same bell-character alphabet as row.Row, with 'X'/'x' as wildcard.
func ParsePattern(s string) Pattern {
	var p Pattern

	chars := "1234567890ETABCDFGHJ"

	for i := 0; i < row.Stage && i < len(s); i++ {
		c := s[i]
		if c == 'X' || c == 'x' {
			p[i] = wildcard

			continue
		}

		for j := 0; j < len(chars); j++ {
			if chars[j] == c {
				p[i] = int8(j + 1) //nolint:gosec // places are small

				break
			}
		}
	}

	return p
}

// Matches reports whether row r satisfies pattern p.
func (p Pattern) Matches(r row.Row) bool {
	for i, cell := range p {
		if cell != wildcard && cell != r[i] {
			return false
		}
	}

	return true
}

// Definition is one named, scored music rule: any row matching any of its
// patterns contributes Score points.
type Definition struct {
	Name     string
	Score    int
	Patterns []Pattern
}

// scoreRow sums the score of every definition whose pattern matches r.
func scoreRow(r row.Row, defs []Definition) int {
	total := 0

	for _, d := range defs {
		for _, p := range d.Patterns {
			if p.Matches(r) {
				total += d.Score

				break // each definition contributes at most once per row
			}
		}
	}

	return total
}

// Rebuild recomputes every node's per-row MusicScore and every leadhead
// node's per-composite-method LeadMusic cache. It must be re-run whenever
// the method set or the music set changes (spec §3 lifecycles).
func Rebuild(tbl *node.Table, defs []Definition, composites []method.CompositeMethod) {
	RebuildWithPool(tbl, defs, composites, nil)
}

// RebuildWithPool is Rebuild, but spreads the per-leadhead LeadMusic
// precompute — independent, read-only-of-table work — across a worker
// pool when one is supplied. This only parallelizes the one-off table
// build that happens before a search starts; the search loop itself
// remains single-threaded (spec §5).
func RebuildWithPool(tbl *node.Table, defs []Definition, composites []method.CompositeMethod, workers *pool.WorkerPool) {
	for i := range tbl.Nodes {
		tbl.Nodes[i].MusicScore = scoreRow(tbl.Nodes[i].Row, defs)
	}

	for _, leadheadID := range tbl.Leadheads {
		tbl.Nodes[leadheadID].LeadMusic = make([]int, len(composites))
	}

	compute := func(leadheadID int) {
		n := &tbl.Nodes[leadheadID]

		for ci, cm := range composites {
			n.LeadMusic[ci] = leadMusic(tbl, n.ID, cm)
		}
	}

	if workers == nil {
		for _, leadheadID := range tbl.Leadheads {
			compute(leadheadID)
		}

		return
	}

	for _, leadheadID := range tbl.Leadheads {
		id := leadheadID
		workers.Submit(func() { compute(id) })
	}

	workers.Wait()
}

// leadMusic sums the per-row score of every row in one lead of composite
// method cm starting at node startID, excluding the row at the next
// leadhead (spec §4.3: "excluding the next leadhead").
func leadMusic(tbl *node.Table, startID int, cm method.CompositeMethod) int {
	total := 0
	cur := startID

	for _, permID := range cm.PNPermIDs {
		total += tbl.Nodes[cur].MusicScore
		cur = tbl.Nodes[cur].Permute(permID)
	}

	return total
}

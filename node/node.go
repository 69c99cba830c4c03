// Package node builds and indexes the node graph: one canonical Node per
// distinct row of eight bells (8! = 40320 of them), with precomputed
// permutation links, nParts, and the leadhead/tenors-together/tenors-home
// flags the search driver and composition buffer depend on.
package node

import (
	"fmt"

	"touch-composer/row"
)

// Count is the total number of distinct rows on eight bells.
const Count = 40320

// LeadheadCount is the number of rows with the treble leading (bell 1 in
// position 1) — one eighth of Count, since the other seven bells can be in
// any order.
const LeadheadCount = 5040

// Node is the canonical handle for one row.
type Node struct {
	ID               int
	Row              row.Row
	LeadheadNumber   int // -1 unless IsLeadhead
	IsLeadhead       bool
	IsTenorsTogether bool
	IsNicePartEnd    bool
	IsTenorsHome     bool
	MusicScore       int
	LeadMusic        []int // indexed by composite-method index, filled by package music
	NParts           int

	// RegenOffset is scratch state used only during a single search: the
	// driver sets it when it passes through a tenors-home node, recording
	// how many leads back the previous tenors-home crossing was within the
	// composition currently being built. Nothing in the search reads it
	// back; the copy-forward pointer the driver keeps for itself is what
	// the rotational-sort mechanism uses. It is never meaningful outside an
	// in-progress search —
	// safe only because the search itself is single-threaded (spec §5).
	RegenOffset int

	permute []int
}

// Permute returns the destination node id reached by applying permutation
// id permID to this node's row. It is a pure array lookup in the hot loop,
// valid only after Table.BuildLinks has run.
func (n *Node) Permute(permID int) int {
	return n.permute[permID]
}

// Table is the node graph: one Node per row, closed under every
// registered permutation.
type Table struct {
	Nodes                   []Node
	Leadheads               []int // node ids, contiguous leadhead numbers 0..LeadheadCount-1
	TenorsTogetherLeadheads []int

	index map[row.Row]int
}

// Build generates all 40320 nodes by exhaustive permutation of the seven
// bells behind the treble at every position the treble can occupy — an
// exhaustive depth-first walk of the symmetric group on eight symbols,
// matching spec §4.2's "exhaustive depth-first generation".
func Build() *Table {
	t := &Table{
		Nodes:     make([]Node, 0, Count),
		Leadheads: make([]int, 0, LeadheadCount),
		index:     make(map[row.Row]int, Count),
	}

	var bells [row.Stage]int8
	for i := range bells {
		bells[i] = int8(i + 1) //nolint:gosec // Stage is 8
	}

	used := make([]bool, row.Stage+1)
	var cur row.Row

	var generate func(depth int)
	generate = func(depth int) {
		if depth == row.Stage {
			t.addNode(cur)

			return
		}

		for _, b := range bells {
			if used[b] {
				continue
			}

			used[b] = true
			cur[depth] = b
			generate(depth + 1)
			used[b] = false
		}
	}

	generate(0)

	if len(t.Nodes) != Count {
		panic(fmt.Sprintf("node table invariant violated: generated %d nodes, want %d", len(t.Nodes), Count))
	}

	if len(t.Leadheads) != LeadheadCount {
		panic(fmt.Sprintf("node table invariant violated: %d leadheads, want %d", len(t.Leadheads), LeadheadCount))
	}

	return t
}

func (t *Table) addNode(r row.Row) {
	id := len(t.Nodes)

	n := Node{
		ID:             id,
		Row:            r,
		LeadheadNumber: -1,
		NParts:         nParts(r),
	}

	if r[0] == 1 {
		n.IsLeadhead = true
		n.LeadheadNumber = len(t.Leadheads)
	}

	n.IsTenorsHome = r[6] == 7 && r[7] == 8
	n.IsTenorsTogether = isTenorsTogether(r)

	t.Nodes = append(t.Nodes, n)
	t.index[r] = id

	if n.IsLeadhead {
		t.Leadheads = append(t.Leadheads, id)

		if n.IsTenorsTogether {
			t.TenorsTogetherLeadheads = append(t.TenorsTogetherLeadheads, id)
		}
	}
}

// isTenorsTogether reports whether bells 7 and 8 ring one immediately
// after the other, in either order. This is a simplification of the full
// ringing definition of "coursing position" (see DESIGN.md): it captures
// the common case used for pruning without modelling the complete
// coursing-order group structure.
func isTenorsTogether(r row.Row) bool {
	var pos7, pos8 int

	for i, b := range r {
		switch b {
		case 7:
			pos7 = i
		case 8:
			pos8 = i
		}
	}

	diff := pos7 - pos8
	if diff < 0 {
		diff = -diff
	}

	return diff == 1
}

// nParts returns the multiplicative order of r viewed as a permutation:
// the number of times r must be applied (starting from rounds) to return
// to rounds.
func nParts(r row.Row) int {
	perm := row.Permutation(r)

	cur := row.Rounds
	n := 0

	for {
		cur = cur.Apply(perm)
		n++

		if cur == row.Rounds {
			return n
		}
	}
}

// Lookup returns the node id for row r.
func (t *Table) Lookup(r row.Row) (int, bool) {
	id, ok := t.index[r]

	return id, ok
}

// MustLookup is Lookup but panics on a missing row — used where the
// permutation closure invariant (spec §7) guarantees the row exists.
func (t *Table) MustLookup(r row.Row) int {
	id, ok := t.Lookup(r)
	if !ok {
		panic(fmt.Sprintf("node table invariant violated: row %s not found", r))
	}

	return id
}

// BuildLinks fills every node's permutation-link table for the given flat
// id space of permutations (PN permutations followed by leadhead/call
// permutations, per spec §3). Must be called once after all methods are
// registered and before the search begins.
func (t *Table) BuildLinks(perms []row.Permutation) {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		n.permute = make([]int, len(perms))

		for pid, p := range perms {
			n.permute[pid] = t.MustLookup(n.Row.Apply(p))
		}
	}
}

// MarkNicePartEnds flags every node whose row satisfies a nice-part-end
// predicate (caller-supplied, since "nice" is a music/style policy decision
// outside the node table's own responsibility).
func (t *Table) MarkNicePartEnds(isNice func(row.Row) bool) {
	for i := range t.Nodes {
		t.Nodes[i].IsNicePartEnd = isNice(t.Nodes[i].Row)
	}
}

// ResetRegenOffsets clears every node's RegenOffset scratch field. The
// driver calls this once before a search begins, since RegenOffset is
// stamped in place as the search crosses tenors-home nodes and carries no
// meaning between searches.
func (t *Table) ResetRegenOffsets() {
	for i := range t.Nodes {
		t.Nodes[i].RegenOffset = 0
	}
}

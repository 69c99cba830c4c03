// Package composer holds the composition buffer: the reusable, in-place
// mutated state of the partial composition the search driver is building —
// leads, running COM and length, truth checking, rotation enumeration, and
// music-over-all-rotations (spec §4.5).
package composer

import (
	"touch-composer/method"
	"touch-composer/node"
	"touch-composer/row"
)

// Lead is one value entry in a composition: the node it started from, the
// composite method and call used, and the node it ended at.
type Lead struct {
	StartNode    int
	CompositeIdx int
	Call         method.CallKind
	EndNode      int
}

// Buffer is the composition currently being built by the search driver. It
// is allocated once and mutated in place for the entire search, per spec
// §3's "reused across the entire search" lifecycle.
type Buffer struct {
	Table      *node.Table
	Composites []method.CompositeMethod
	Parts      int

	Leads  []Lead
	COM    []int
	Length []int

	truth         []uint64
	leadheadTruth []uint64
}

// New creates an empty buffer sized for leadsPerPart leads and the given
// part count.
func New(tbl *node.Table, composites []method.CompositeMethod, leadsPerPart, parts int) *Buffer {
	return &Buffer{
		Table:         tbl,
		Composites:    composites,
		Parts:         parts,
		Leads:         make([]Lead, 0, leadsPerPart),
		COM:           make([]int, 0, leadsPerPart),
		Length:        make([]int, 0, leadsPerPart),
		truth:         make([]uint64, (node.Count+63)/64),
		leadheadTruth: make([]uint64, (node.LeadheadCount+63)/64),
	}
}

// Len is the number of leads currently appended.
func (b *Buffer) Len() int {
	return len(b.Leads)
}

// StartNode returns the node the next lead (at the current length) would
// start from: rounds-equivalent node (the configured search start) if the
// buffer is empty, else the previous lead's end node.
func (b *Buffer) StartNode(initial int) int {
	if len(b.Leads) == 0 {
		return initial
	}

	return b.Leads[len(b.Leads)-1].EndNode
}

// Append adds a lead starting at startNode using the given composite
// method and call, updating COM/Length, and returns the resulting
// end-of-lead node id.
func (b *Buffer) Append(startNode, compositeIdx int, call method.CallKind) int {
	cm := b.Composites[compositeIdx]
	endNode := b.Table.Nodes[startNode].Permute(cm.CallPermIDs[call])

	com := 0
	if len(b.COM) > 0 {
		com = b.COM[len(b.COM)-1] + boolToInt(cm.ChangesMethod)

		prev := b.Composites[b.Leads[len(b.Leads)-1].CompositeIdx]
		if cm.FirstIdx != prev.SecondIdx {
			com++
		}
	}

	length := len(cm.PNPermIDs)
	if len(b.Length) > 0 {
		length += b.Length[len(b.Length)-1]
	}

	b.Leads = append(b.Leads, Lead{StartNode: startNode, CompositeIdx: compositeIdx, Call: call, EndNode: endNode})
	b.COM = append(b.COM, com)
	b.Length = append(b.Length, length)

	return endNode
}

// Pop removes the most recently appended lead (backtrack).
func (b *Buffer) Pop() {
	b.Leads = b.Leads[:len(b.Leads)-1]
	b.COM = b.COM[:len(b.COM)-1]
	b.Length = b.Length[:len(b.Length)-1]
}

// PartEnd returns the node id at the end of the last lead (the unrotated
// part end).
func (b *Buffer) PartEnd() int {
	return b.Leads[len(b.Leads)-1].EndNode
}

func boolToInt(v bool) int {
	if v {
		return 1
	}

	return 0
}

// --- leadhead-repetition bitmap (driver support) ---

// MarkLeadhead records that leadhead number ln has been used somewhere in
// the composition being built. Returns false if it was already marked.
func (b *Buffer) MarkLeadhead(ln int) bool {
	word, bit := ln/64, uint(ln%64)
	if b.leadheadTruth[word]&(1<<bit) != 0 {
		return false
	}

	b.leadheadTruth[word] |= 1 << bit

	return true
}

// UnmarkLeadhead clears a previously marked leadhead (backtrack).
func (b *Buffer) UnmarkLeadhead(ln int) {
	word, bit := ln/64, uint(ln%64)
	b.leadheadTruth[word] &^= 1 << bit
}

// ResetLeadheads clears the whole leadhead bitmap.
func (b *Buffer) ResetLeadheads() {
	for i := range b.leadheadTruth {
		b.leadheadTruth[i] = 0
	}
}

// --- rotation enumeration ---

// RotationPartEnd computes the part-end row reached by treating the
// composition as a cyclic sequence of leads starting at index r, beginning
// from rounds (spec §4.5). Rotation 0's result equals the stored part end
// row directly, by construction.
func (b *Buffer) RotationPartEnd(r int) row.Row {
	cur := row.Rounds
	n := len(b.Leads)

	for i := 0; i < n; i++ {
		lead := b.Leads[(r+i)%n]
		cm := b.Composites[lead.CompositeIdx]
		cur = cur.Apply(b.permutationFor(cm.CallPermIDs[lead.Call]))
	}

	return cur
}

// permutationFor recovers the Permutation value for a flat permutation id
// by applying it to rounds' node and reading back the resulting row's
// permutation form — valid because permutation application is
// position-homomorphic (see method.changeToPermutation).
func (b *Buffer) permutationFor(permID int) row.Permutation {
	roundsID := b.Table.MustLookup(row.Rounds)
	dest := b.Table.Nodes[roundsID].Permute(permID)

	return row.Permutation(b.Table.Nodes[dest].Row)
}

// RotationAdmissible applies the tenors-home and nice-part-end gates of
// spec §4.5 to a candidate rotation's part-end row.
func (b *Buffer) RotationAdmissible(partEndRow row.Row, requireTenorsHome, requireNicePartEnd bool) bool {
	id, ok := b.Table.Lookup(partEndRow)
	if !ok {
		return false
	}

	n := &b.Table.Nodes[id]

	if requireTenorsHome && !n.IsTenorsHome {
		return false
	}

	if requireNicePartEnd && !n.IsNicePartEnd {
		return false
	}

	return true
}

// --- truth checking ---

// TruthCheck clears the per-part truth bitmap and checks every row of
// every lead across parts for repetition. By the symmetry of the
// multiplier group, only the first ceil(parts/2)+1 parts need be checked
// (spec §4.5). It returns true if the composition is true, and if false in
// the first part, the index of the offending lead so the driver can
// backtrack directly past that prefix.
func (b *Buffer) TruthCheck() (isTrue bool, firstPartFalseLead int) {
	for i := range b.truth {
		b.truth[i] = 0
	}

	partsToCheck := (b.Parts+1)/2 + 1
	if partsToCheck > b.Parts {
		partsToCheck = b.Parts
	}

	n := len(b.Leads)

	startNode := b.Leads[0].StartNode
	curNode := startNode

	for part := 0; part < partsToCheck; part++ {
		for leadIdx := 0; leadIdx < n; leadIdx++ {
			lead := b.Leads[leadIdx]
			cm := b.Composites[lead.CompositeIdx]

			node := curNode
			for _, permID := range cm.PNPermIDs {
				if !b.mark(node) {
					if part == 0 {
						return false, leadIdx
					}

					return false, -1
				}

				node = b.Table.Nodes[node].Permute(permID)
			}

			curNode = b.Table.Nodes[curNode].Permute(cm.CallPermIDs[lead.Call])
		}
	}

	return true, -1
}

func (b *Buffer) mark(id int) bool {
	word, bit := id/64, uint(id%64)
	if b.truth[word]&(1<<bit) != 0 {
		return false
	}

	b.truth[word] |= 1 << bit

	return true
}

// --- music over rotations ---

// CalcMusic evaluates the music total for rotation r: stepping across all
// parts and all leads in cyclic order starting at r, summing each
// leadhead's cached per-method lead-music. It always walks every part;
// exceeded reports whether the running total passed minMusic at the end of
// any part. It does not stop early and does not run the truth check.
func (b *Buffer) CalcMusic(r, minMusic int) (music int, exceeded bool) {
	n := len(b.Leads)

	startNode := b.Leads[0].StartNode
	curNode := startNode

	// Walk to the rotation start node by replaying leads 0..r-1 once.
	for i := 0; i < r; i++ {
		lead := b.Leads[i]
		cm := b.Composites[lead.CompositeIdx]
		curNode = b.Table.Nodes[curNode].Permute(cm.CallPermIDs[lead.Call])
	}

	total := 0

	for part := 0; part < b.Parts; part++ {
		for i := 0; i < n; i++ {
			lead := b.Leads[(r+i)%n]
			cm := b.Composites[lead.CompositeIdx]
			total += b.Table.Nodes[curNode].LeadMusic[lead.CompositeIdx]
			curNode = b.Table.Nodes[curNode].Permute(cm.CallPermIDs[lead.Call])
		}

		if total > minMusic {
			exceeded = true
		}
	}

	return total, exceeded
}

// Package row implements the permutation algebra eight-bell change ringing
// is built on: rows (orderings of the eight bells), the permutation
// operator that advances a row through a lead, and the place-notation
// "change" operator that advances a row by one step of a method.
package row

import "fmt"

// Stage is fixed at eight bells throughout this engine; see spec Non-goals.
const Stage = 8

// Row is an ordering of the eight bells, 1-indexed by position. Row[0] is
// the bell ringing in the first position ("leading"), Row[7] the bell in
// the last.
type Row [Stage]int8

// Rounds is the identity row: 1 2 3 4 5 6 7 8.
var Rounds = Row{1, 2, 3, 4, 5, 6, 7, 8}

// Permutation is a permutation vector of the eight positions, itself
// expressed as a Row: Permutation[i] names the position (1-indexed) whose
// occupant moves into position i+1.
type Permutation Row

// String renders a row as its bells in order, e.g. "12345678".
func (r Row) String() string {
	var b [Stage]byte
	for i, bell := range r {
		b[i] = bellChar(bell)
	}

	return string(b[:])
}

// bellChars gives the display character for bells 1..20, per spec §6.
const bellChars = "1234567890ETABCDFGHJ"

func bellChar(bell int8) byte {
	if bell < 1 || int(bell) > len(bellChars) {
		return '?'
	}

	return bellChars[bell-1]
}

// Equal reports whether two rows are positionally identical.
func (r Row) Equal(o Row) bool {
	return r == o
}

// Apply advances r through permutation p, returning the resulting row:
// result[i] = r[p[i]-1].
func (r Row) Apply(p Permutation) Row {
	var out Row
	for i, from := range p {
		out[i] = r[from-1]
	}

	return out
}

// Inverse returns the permutation that undoes p.
func (p Permutation) Inverse() Permutation {
	var inv Permutation
	for i, from := range p {
		inv[from-1] = int8(i + 1) //nolint:gosec // Stage is 8, always fits int8
	}

	return inv
}

// AsRow treats a permutation as the row obtained by applying it to Rounds.
func (p Permutation) AsRow() Row {
	return Row(p)
}

// FromRow builds the permutation that carries Rounds to r.
func FromRow(r Row) Permutation {
	return Permutation(r)
}

// Change is a single step of place notation: the set of positions held
// fixed, sorted ascending. An empty Change is the "cross" — every adjacent
// pair swaps.
type Change struct {
	Held []int
}

// Cross is the all-swap change ("x" / "-" in textual notation).
var Cross = Change{}

// Apply advances row r by one change, swapping every adjacent pair of
// positions not named in c.Held.
//
// Malformed notation — an odd place appearing where the scan expects an
// even-length run between held positions — defensively injects an implicit
// held position immediately before the offending place, per spec §4.1.
func (c Change) Apply(r Row) Row {
	held := make(map[int]bool, len(c.Held))
	for _, p := range c.Held {
		held[p] = true
	}

	var out Row

	i := 1
	for i <= Stage {
		if held[i] {
			out[i-1] = r[i-1]
			i++

			continue
		}

		if i == Stage || held[i+1] {
			// Malformed: a place expected to pair with i+1 is itself held
			// (or i is the last place and unheld). Treat i as held too.
			out[i-1] = r[i-1]
			i++

			continue
		}

		out[i-1] = r[i]
		out[i] = r[i-1]
		i += 2
	}

	return out
}

// highestPlace returns the highest place held by c, or 0 for a cross.
func (c Change) highestPlace() int {
	h := 0
	for _, p := range c.Held {
		if p > h {
			h = p
		}
	}

	return h
}

// IsCross reports whether c is the empty/cross change.
func (c Change) IsCross() bool {
	return len(c.Held) == 0
}

// Notation is an ordered sequence of changes making up one half-lead (or a
// full symmetric lead, depending on context — see method.Method).
type Notation []Change

// String renders the notation in dot-separated form using "x" for cross,
// e.g. "x.16.x.16".
func (n Notation) String() string {
	s := ""

	for i, c := range n {
		if i > 0 {
			s += "."
		}

		if c.IsCross() {
			s += "x"
		} else {
			for _, p := range c.Held {
				s += string(bellChar(int8(p))) //nolint:gosec // places are small
			}
		}
	}

	return s
}

// HighestPlace returns the highest place number appearing anywhere in the
// notation.
func (n Notation) HighestPlace() int {
	h := 0

	for _, c := range n {
		if p := c.highestPlace(); p > h {
			h = p
		}
	}

	return h
}

// GuessStage estimates the stage the notation was written for. External
// places are often omitted from textual notation, so when the notation
// contains a cross and its highest explicit place is odd, the guess adds
// one place to account for the omitted top place (spec §4.1, §9 open
// question (b): this guess can be wrong and downstream code must tolerate
// or reject an off-by-one result).
func (n Notation) GuessStage() int {
	h := n.HighestPlace()

	hasCross := false

	for _, c := range n {
		if c.IsCross() {
			hasCross = true

			break
		}
	}

	if hasCross && h%2 == 1 {
		return h + 1
	}

	return h
}

// ApplyAll advances row r through every change in the notation in order.
func (n Notation) ApplyAll(r Row) Row {
	for _, c := range n {
		r = c.Apply(r)
	}

	return r
}

// Mirror returns the notation read backwards — used to derive a symmetric
// method's second half from its first half.
func (n Notation) Mirror() Notation {
	out := make(Notation, len(n))
	for i, c := range n {
		out[len(n)-1-i] = c
	}

	return out
}

// ValidateTrebleHunt checks the treble-bell invariant required by spec §7:
// the treble (bell 1) must be the hunt bell, fixed at position 1 of the
// leadhead, and must occupy position Stage at the half-lead.
func ValidateTrebleHunt(leadhead, halflead Row) error {
	if leadhead[0] != 1 {
		return fmt.Errorf("treble is not in position 1 at the leadhead: %s", leadhead)
	}

	if halflead[Stage-1] != 1 {
		return fmt.Errorf("treble is not in position %d at the half-lead: %s", Stage, halflead)
	}

	return nil
}

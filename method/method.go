// Package method represents symmetric eight-bell methods, the composite
// (first-half/second-half) cross product the half-lead splicing engine
// searches over, and the flat permutation id space both PN changes and
// leadhead/call endings are registered into (spec §3, §4.4).
package method

import (
	"fmt"

	"touch-composer/row"
)

// CallKind selects which lead ending a composite method uses. Only the
// two calls spec.md's Non-goals permit are modelled.
type CallKind int

const (
	Plain CallKind = iota
	Bob
	Single
	numCallKinds
)

// bobChange and singleChange are the substituted final changes for the two
// supported call types: fourth's-place bob, and the 1234 single.
var (
	bobChange    = row.Change{Held: []int{4}}
	singleChange = row.Change{Held: []int{1, 2, 3, 4}}
)

// Method is one symmetric eight-bell method.
type Method struct {
	Name         string
	Abbreviation string

	FirstHalf  row.Notation
	SecondHalf row.Notation // mirror of FirstHalf

	FirstHalfLen  int
	SecondHalfLen int
	LeadLength    int

	HalfleadRow row.Row
	LeadheadRow row.Row
}

// New builds a Method from its name, abbreviation, and first-half
// notation (the parsed output of package notation). The second half is
// derived as the mirror image, per spec §4.4.
func New(name, abbreviation string, firstHalf row.Notation) (*Method, error) {
	if len(firstHalf) == 0 {
		return nil, fmt.Errorf("method %q: empty place notation", name)
	}

	secondHalf := firstHalf.Mirror()

	m := &Method{
		Name:          name,
		Abbreviation:  abbreviation,
		FirstHalf:     firstHalf,
		SecondHalf:    secondHalf,
		FirstHalfLen:  len(firstHalf),
		SecondHalfLen: len(secondHalf),
		LeadLength:    len(firstHalf) + len(secondHalf),
	}

	m.HalfleadRow = firstHalf.ApplyAll(row.Rounds)
	m.LeadheadRow = secondHalf.ApplyAll(m.HalfleadRow)

	if err := row.ValidateTrebleHunt(m.LeadheadRow, m.HalfleadRow); err != nil {
		return nil, fmt.Errorf("method %q: %w", name, err)
	}

	return m, nil
}

// CompositeMethod is the cross product entry (i, j): method i's first half
// followed by method j's second half, forming one half-lead-spliced lead.
type CompositeMethod struct {
	FirstIdx  int
	SecondIdx int

	// ChangesMethod is true when i != j (spec §4.4, feeds the COM count).
	ChangesMethod bool

	// PNPermIDs holds one permutation id per change in the lead (length =
	// lead length), into the flat id space Registry assigns.
	PNPermIDs []int

	// CallPermIDs[k] is the single net permutation id that carries a
	// starting node straight to the end-of-lead row for call kind k
	// (spec §4.5: "applying the composite's leadhead call permutation to
	// the starting node").
	CallPermIDs [3]int
}

// Registry assigns the flat permutation id space described in spec §3:
// PN-change permutations first, then leadhead/call permutations, offset
// by the PN count so both live in one id space index into node.Permute.
type Registry struct {
	pn   []row.Permutation
	pnID map[row.Permutation]int
	lh   []row.Permutation
	lhID map[row.Permutation]int
}

// NewRegistry creates an empty permutation registry.
func NewRegistry() *Registry {
	return &Registry{
		pnID: make(map[row.Permutation]int),
		lhID: make(map[row.Permutation]int),
	}
}

func (r *Registry) registerPN(p row.Permutation) int {
	if id, ok := r.pnID[p]; ok {
		return id
	}

	id := len(r.pn)
	r.pn = append(r.pn, p)
	r.pnID[p] = id

	return id
}

func (r *Registry) registerLH(p row.Permutation) int {
	if id, ok := r.lhID[p]; ok {
		return id
	}

	id := len(r.lh)
	r.lh = append(r.lh, p)
	r.lhID[p] = id

	return id
}

// changeToPermutation converts a single place-notation change into the
// equivalent Permutation: since Change.Apply only looks at position, not
// bell identity, applying it to Rounds yields the permutation vector that
// reproduces the same effect on any row.
func changeToPermutation(c row.Change) row.Permutation {
	return row.Permutation(c.Apply(row.Rounds))
}

// BuildComposites computes the full N² cross product of composite methods
// for the given method list, registering every PN and call permutation
// into the registry (deduplicated globally, per spec §4.4).
func (r *Registry) BuildComposites(methods []*Method) []CompositeMethod {
	composites := make([]CompositeMethod, 0, len(methods)*len(methods))

	for i, mi := range methods {
		for j, mj := range methods {
			composites = append(composites, r.buildOne(i, mi, j, mj))
		}
	}

	return composites
}

func (r *Registry) buildOne(i int, mi *Method, j int, mj *Method) CompositeMethod {
	notation := make(row.Notation, 0, mi.FirstHalfLen+mj.SecondHalfLen)
	notation = append(notation, mi.FirstHalf...)
	notation = append(notation, mj.SecondHalf...)

	pnIDs := make([]int, len(notation))
	for k, c := range notation {
		pnIDs[k] = r.registerPN(changeToPermutation(c))
	}

	cm := CompositeMethod{
		FirstIdx:      i,
		SecondIdx:     j,
		ChangesMethod: i != j,
		PNPermIDs:     pnIDs,
	}

	plainRow := notation.ApplyAll(row.Rounds)
	cm.CallPermIDs[Plain] = r.registerLH(row.Permutation(plainRow))

	bobNotation := replaceLast(notation, bobChange)
	cm.CallPermIDs[Bob] = r.registerLH(row.Permutation(bobNotation.ApplyAll(row.Rounds)))

	singleNotation := replaceLast(notation, singleChange)
	cm.CallPermIDs[Single] = r.registerLH(row.Permutation(singleNotation.ApplyAll(row.Rounds)))

	return cm
}

func replaceLast(n row.Notation, c row.Change) row.Notation {
	out := make(row.Notation, len(n))
	copy(out, n)
	out[len(out)-1] = c

	return out
}

// Permutations returns the flat, ordered permutation list (PN ids 0..,
// then leadhead/call ids offset by the PN count) ready for
// node.Table.BuildLinks.
func (r *Registry) Permutations() []row.Permutation {
	out := make([]row.Permutation, 0, len(r.pn)+len(r.lh))
	out = append(out, r.pn...)
	out = append(out, r.lh...)

	return out
}

// PNCount is the offset leadhead/call ids are rebased by.
func (r *Registry) PNCount() int {
	return len(r.pn)
}

// Rebase shifts each composite's CallPermIDs (indices into the lh slice)
// by pnCount into the final flat id space. PNPermIDs are left as they are:
// the pn slice comes first in that space, so they need no offset. Call
// once after all composites are built.
func Rebase(composites []CompositeMethod, pnCount int) {
	for i := range composites {
		for k := range composites[i].CallPermIDs {
			composites[i].CallPermIDs[k] += pnCount
		}
	}
}

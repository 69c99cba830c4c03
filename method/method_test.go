package method

import (
	"testing"

	"touch-composer/row"
)

// plainBobFirstHalf is a simple, genuinely symmetric notation used purely
// to exercise the composite-method machinery: it need not correspond to a
// real named method.
func plainBobFirstHalf() row.Notation {
	return row.Notation{row.Cross, {Held: []int{1, 8}}, row.Cross, {Held: []int{1, 8}}, row.Cross, {Held: []int{1, 8}}, row.Cross, {Held: []int{1, 8}}}
}

func mustMethod(t *testing.T, name string) *Method {
	t.Helper()

	m, err := New(name, name[:1], plainBobFirstHalf())
	if err != nil {
		t.Fatalf("New(%q): %v", name, err)
	}

	return m
}

func TestNewDerivesLeadheadAndHalflead(t *testing.T) {
	m := mustMethod(t, "Alpha")

	if m.LeadLength != m.FirstHalfLen+m.SecondHalfLen {
		t.Errorf("LeadLength = %d, want %d", m.LeadLength, m.FirstHalfLen+m.SecondHalfLen)
	}

	if err := row.ValidateTrebleHunt(m.LeadheadRow, m.HalfleadRow); err != nil {
		t.Errorf("derived rows fail treble-hunt invariant: %v", err)
	}
}

func TestBuildCompositesIsNSquared(t *testing.T) {
	methods := []*Method{mustMethod(t, "Alpha"), mustMethod(t, "Beta")}

	reg := NewRegistry()
	composites := reg.BuildComposites(methods)

	if len(composites) != len(methods)*len(methods) {
		t.Fatalf("len(composites) = %d, want %d", len(composites), len(methods)*len(methods))
	}

	for _, cm := range composites {
		want := cm.FirstIdx != cm.SecondIdx
		if cm.ChangesMethod != want {
			t.Errorf("composite (%d,%d).ChangesMethod = %v, want %v", cm.FirstIdx, cm.SecondIdx, cm.ChangesMethod, want)
		}
	}
}

func TestPlainCallPermutationMatchesPNStepping(t *testing.T) {
	methods := []*Method{mustMethod(t, "Alpha")}

	reg := NewRegistry()
	composites := reg.BuildComposites(methods)
	perms := reg.Permutations()
	Rebase(composites, reg.PNCount())

	cm := composites[0]

	// Step through every PN permutation from rounds.
	cur := row.Rounds
	for _, pid := range cm.PNPermIDs {
		cur = cur.Apply(perms[pid])
	}

	// Apply the single plain call permutation from rounds.
	viaCall := row.Rounds.Apply(perms[cm.CallPermIDs[Plain]])

	if cur != viaCall {
		t.Errorf("PN stepping gives %s, plain call permutation gives %s", cur, viaCall)
	}
}

func TestDedupSharesPermutationIDs(t *testing.T) {
	// Two identical methods should share every PN permutation id since the
	// registry dedups by permutation value, not by method identity.
	methods := []*Method{mustMethod(t, "Alpha"), mustMethod(t, "AlphaAgain")}

	reg := NewRegistry()
	composites := reg.BuildComposites(methods)

	cm00 := composites[0] // (Alpha, Alpha)
	cm11 := composites[3] // (AlphaAgain, AlphaAgain)

	if len(cm00.PNPermIDs) != len(cm11.PNPermIDs) {
		t.Fatalf("lead lengths differ: %d vs %d", len(cm00.PNPermIDs), len(cm11.PNPermIDs))
	}

	for i := range cm00.PNPermIDs {
		if cm00.PNPermIDs[i] != cm11.PNPermIDs[i] {
			t.Errorf("perm id %d differs between identical methods: %d vs %d", i, cm00.PNPermIDs[i], cm11.PNPermIDs[i])
		}
	}
}

package node

import (
	"testing"

	"touch-composer/row"
)

func TestBuildInvariants(t *testing.T) {
	tbl := Build()

	if len(tbl.Nodes) != Count {
		t.Errorf("len(Nodes) = %d, want %d", len(tbl.Nodes), Count)
	}

	if len(tbl.Leadheads) != LeadheadCount {
		t.Errorf("len(Leadheads) = %d, want %d", len(tbl.Leadheads), LeadheadCount)
	}

	for i, id := range tbl.Leadheads {
		if tbl.Nodes[id].LeadheadNumber != i {
			t.Errorf("leadhead %d has LeadheadNumber %d, want contiguous %d", id, tbl.Nodes[id].LeadheadNumber, i)
		}

		if tbl.Nodes[id].Row[0] != 1 {
			t.Errorf("node %d flagged leadhead but treble not leading: %s", id, tbl.Nodes[id].Row)
		}
	}

	roundsID, ok := tbl.Lookup(row.Rounds)
	if !ok {
		t.Fatal("rounds not found in table")
	}

	if tbl.Nodes[roundsID].NParts != 1 {
		t.Errorf("rounds NParts = %d, want 1", tbl.Nodes[roundsID].NParts)
	}
}

func TestPermuteInverseRoundTrip(t *testing.T) {
	tbl := Build()

	p := row.Permutation{2, 1, 4, 3, 6, 5, 8, 7}
	inv := p.Inverse()

	tbl.BuildLinks([]row.Permutation{p, row.Permutation(inv)})

	for i := 0; i < Count; i += 977 { // sample, not exhaustive, keeps test fast
		n := &tbl.Nodes[i]

		dest := n.Permute(0)
		back := tbl.Nodes[dest].Permute(1)

		if back != n.ID {
			t.Errorf("node %d: permute then inverse-permute = %d, want %d", n.ID, back, n.ID)
		}
	}
}

func TestNPartsRoundTrip(t *testing.T) {
	tbl := Build()

	for _, id := range []int{0, 1, 100, 40319} {
		n := &tbl.Nodes[id]
		perm := row.Permutation(n.Row)

		cur := row.Rounds
		for i := 0; i < n.NParts; i++ {
			cur = cur.Apply(perm)
		}

		if cur != row.Rounds {
			t.Errorf("node %d: applying %d times did not return to rounds", id, n.NParts)
		}

		if n.NParts > 1 {
			cur = row.Rounds
			for i := 0; i < n.NParts-1; i++ {
				cur = cur.Apply(perm)
			}

			if cur == row.Rounds {
				t.Errorf("node %d: returned to rounds before NParts applications", id)
			}
		}
	}
}

func TestTenorsHomeAndTogether(t *testing.T) {
	tbl := Build()

	id, ok := tbl.Lookup(row.Row{1, 2, 3, 4, 5, 6, 7, 8})
	if !ok {
		t.Fatal("rounds not found")
	}

	if !tbl.Nodes[id].IsTenorsHome {
		t.Error("rounds should be tenors-home")
	}

	if !tbl.Nodes[id].IsTenorsTogether {
		t.Error("rounds should be tenors-together (7 immediately before 8)")
	}

	id2, ok := tbl.Lookup(row.Row{1, 2, 3, 4, 5, 7, 6, 8})
	if !ok {
		t.Fatal("row not found")
	}

	if tbl.Nodes[id2].IsTenorsTogether {
		t.Error("tenors separated by bell 6 should not be tenors-together")
	}
}

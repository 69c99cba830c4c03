package search

import (
	"context"
	"testing"
	"time"

	"touch-composer/method"
	"touch-composer/music"
	"touch-composer/node"
	"touch-composer/row"
	"touch-composer/topk"
)

func buildFixture(t *testing.T) (*node.Table, []method.CompositeMethod, []*method.Method) {
	t.Helper()

	tbl := node.Build()

	firstHalf := row.Notation{row.Cross, {Held: []int{1, 8}}, row.Cross, {Held: []int{1, 8}}, row.Cross, {Held: []int{1, 8}}, row.Cross, {Held: []int{1, 8}}}

	m, err := method.New("Alpha", "A", firstHalf)
	if err != nil {
		t.Fatalf("method.New: %v", err)
	}

	reg := method.NewRegistry()
	composites := reg.BuildComposites([]*method.Method{m})
	perms := reg.Permutations()
	method.Rebase(composites, reg.PNCount())
	tbl.BuildLinks(perms)

	defs := []music.Definition{
		{Name: "rounds", Score: 1, Patterns: []music.Pattern{music.ParsePattern("12345678")}},
	}
	music.Rebuild(tbl, defs, composites)

	tbl.MarkNicePartEnds(func(r row.Row) bool { return r[6] == 7 && r[7] == 8 })

	return tbl, composites, []*method.Method{m}
}

func TestDriverRunTerminatesWithinBudget(t *testing.T) {
	tbl, composites, methods := buildFixture(t)

	cfg := Config{
		LeadsPerPart:            2,
		Parts:                   1,
		Calls:                   0,
		MinScore:                0,
		MinCOM:                  0,
		MinBalance:              0,
		COMScoreWeight:          2,
		BalanceScoreWeight:      1,
		MaxMethodsAtRepeatLimit: 100,
	}

	top := topk.New(topk.DefaultK)
	d := NewDriver(tbl, composites, methods, cfg, top)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Run(ctx); err != nil && err != context.DeadlineExceeded {
		t.Fatalf("Run: %v", err)
	}

	if d.Candidates == 0 {
		t.Error("expected at least one candidate lead to be tried")
	}
}

func TestComAchievableHalfLeadFormula(t *testing.T) {
	tbl, composites, methods := buildFixture(t)

	cfg := Config{LeadsPerPart: 4, Parts: 1, MinCOM: 3, MaxMethodsAtRepeatLimit: 100}
	top := topk.New(topk.DefaultK)
	d := NewDriver(tbl, composites, methods, cfg, top)

	d.buf.COM = append(d.buf.COM, 0, 0)

	// i=1, minCOM=3, n=4: need COM[1] >= 2*1 + (3+1-8) = 2-4 = -2, always true here.
	if !d.comAchievable(1) {
		t.Error("comAchievable should hold when the bound is negative")
	}
}

// buildTwoMethodFixture is buildFixture with a second, independently
// indexed method so tests can exercise FirstIdx/SecondIdx plumbing that a
// single-method fixture can't distinguish.
func buildTwoMethodFixture(t *testing.T) (*node.Table, []method.CompositeMethod, []*method.Method) {
	t.Helper()

	tbl := node.Build()

	firstHalf := row.Notation{row.Cross, {Held: []int{1, 8}}, row.Cross, {Held: []int{1, 8}}, row.Cross, {Held: []int{1, 8}}, row.Cross, {Held: []int{1, 8}}}

	a, err := method.New("Alpha", "A", firstHalf)
	if err != nil {
		t.Fatalf("method.New: %v", err)
	}

	b, err := method.New("Beta", "B", firstHalf)
	if err != nil {
		t.Fatalf("method.New: %v", err)
	}

	methods := []*method.Method{a, b}

	reg := method.NewRegistry()
	composites := reg.BuildComposites(methods)
	perms := reg.Permutations()
	method.Rebase(composites, reg.PNCount())
	tbl.BuildLinks(perms)

	defs := []music.Definition{
		{Name: "rounds", Score: 1, Patterns: []music.Pattern{music.ParsePattern("12345678")}},
	}
	music.Rebuild(tbl, defs, composites)

	tbl.MarkNicePartEnds(func(r row.Row) bool { return r[6] == 7 && r[7] == 8 })

	return tbl, composites, methods
}

// TestRecordTenorsHomeCrossingTracksDistance exercises a multi-crossing
// composition (three tenors-home crossings at slots 2, 5, and 9) and
// verifies both that Node.RegenOffset is actually stamped with the
// leads-back distance to the previous crossing, and that regenPtr is armed
// to resume the copy-forward mechanism at the right slot.
func TestRecordTenorsHomeCrossingTracksDistance(t *testing.T) {
	tbl, composites, methods := buildFixture(t)

	cfg := Config{LeadsPerPart: 10, Parts: 1, MaxMethodsAtRepeatLimit: 100}
	top := topk.New(topk.DefaultK)
	d := NewDriver(tbl, composites, methods, cfg, top)

	nodeA := tbl.MustLookup(row.Rounds)
	nodeB := 12345
	nodeC := 6789

	if tbl.Nodes[nodeA].RegenOffset != 0 || tbl.Nodes[nodeB].RegenOffset != 0 || tbl.Nodes[nodeC].RegenOffset != 0 {
		t.Fatal("NewDriver should have reset every node's RegenOffset to zero")
	}

	d.recordTenorsHomeCrossing(2, nodeA)

	if got := tbl.Nodes[nodeA].RegenOffset; got != 3 {
		t.Errorf("first crossing at slot 2: RegenOffset = %d, want 3", got)
	}

	if d.regenPtr != 0 {
		t.Errorf("regenPtr after first crossing = %d, want 0", d.regenPtr)
	}

	d.recordTenorsHomeCrossing(5, nodeB)

	if got := tbl.Nodes[nodeB].RegenOffset; got != 3 {
		t.Errorf("second crossing at slot 5: RegenOffset = %d, want 3", got)
	}

	if d.regenPtr != 3 {
		t.Errorf("regenPtr after second crossing = %d, want 3", d.regenPtr)
	}

	d.recordTenorsHomeCrossing(9, nodeC)

	if got := tbl.Nodes[nodeC].RegenOffset; got != 4 {
		t.Errorf("third crossing at slot 9: RegenOffset = %d, want 4", got)
	}

	if d.regenPtr != 6 {
		t.Errorf("regenPtr after third crossing = %d, want 6", d.regenPtr)
	}

	if d.lastTenorsHome != 9 {
		t.Errorf("lastTenorsHome = %d, want 9", d.lastTenorsHome)
	}
}

// TestBumpCountsTracksAtLimitCount proves the at-limit-count gate's
// counter actually moves: once one method hits repeatLimit (2) as both
// first and second half, atLimitCount should report 2, and undoing one
// bump should bring it back down.
func TestBumpCountsTracksAtLimitCount(t *testing.T) {
	tbl, composites, methods := buildTwoMethodFixture(t)

	cfg := Config{LeadsPerPart: 8, Parts: 1, MaxMethodsAtRepeatLimit: 100}
	top := topk.New(topk.DefaultK)
	d := NewDriver(tbl, composites, methods, cfg, top)

	if d.atLimitCount != 0 {
		t.Fatalf("initial atLimitCount = %d, want 0", d.atLimitCount)
	}

	aa := composites[0] // FirstIdx=0, SecondIdx=0

	d.bumpCounts(aa, 1)

	if d.atLimitCount != 0 {
		t.Fatalf("atLimitCount after first bump = %d, want 0", d.atLimitCount)
	}

	d.bumpCounts(aa, 1)

	if d.atLimitCount != 2 {
		t.Fatalf("atLimitCount after second bump = %d, want 2 (first and second half both at limit)", d.atLimitCount)
	}

	d.bumpCounts(aa, -1)

	if d.atLimitCount != 0 {
		t.Fatalf("atLimitCount after undo = %d, want 0", d.atLimitCount)
	}
}

// TestAtLimitCountGatePrunesSearch proves the at-limit-count gate actually
// prunes the search: with MaxMethodsAtRepeatLimit=0 every first attempt at
// slot 0 is rejected by the gate before a single candidate is tried, so the
// search explores strictly fewer candidates than with a high limit.
func TestAtLimitCountGatePrunesSearch(t *testing.T) {
	tbl, composites, methods := buildTwoMethodFixture(t)

	run := func(maxAtLimit int) *Driver {
		cfg := Config{
			LeadsPerPart:            6,
			Parts:                   1,
			MaxMethodsAtRepeatLimit: maxAtLimit,
		}
		top := topk.New(topk.DefaultK)
		d := NewDriver(tbl, composites, methods, cfg, top)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := d.Run(ctx); err != nil && err != context.DeadlineExceeded {
			t.Fatalf("Run: %v", err)
		}

		return d
	}

	loose := run(100)
	tight := run(0)

	if tight.Candidates != 0 {
		t.Errorf("tight MaxMethodsAtRepeatLimit=0: Candidates = %d, want 0 (gate should reject before any append)", tight.Candidates)
	}

	if tight.Candidates >= loose.Candidates {
		t.Errorf("tight gate explored %d candidates, want fewer than loose limit's %d", tight.Candidates, loose.Candidates)
	}
}

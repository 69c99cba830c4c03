// Package search implements the rotationally-sorted depth-first search
// over half-lead-spliced (or leadhead-only) compositions described in
// spec §4.6: a single mutable driver walking composite-method/call
// choices lead by lead, gated by repeat-limit and minimum-COM-achievable
// pruning, backtracking on failure, and handing completed candidates to
// the composition buffer for truth/music/balance checking.
//
// The three enumeration shapes spec §4.6 describes (no-calls half-lead,
// with-calls half-lead, leadhead-only with-calls) are modelled here as one
// driver parameterized by Config.LeadheadOnly and Config.Calls rather than
// three duplicated loop bodies — see DESIGN.md for the reasoning.
package search

import (
	"context"
	"fmt"
	"time"

	"touch-composer/composer"
	"touch-composer/method"
	"touch-composer/music"
	"touch-composer/node"
	"touch-composer/row"
	"touch-composer/topk"
)

// checkFreq is the number of inner-loop iterations between cooperative
// abort/pause checks (spec §5: "every CHECK_FREQ (≈2000) inner-loop
// iterations").
const checkFreq = 2000

// statsInterval is how often progress stats are refreshed.
const statsInterval = 500 * time.Millisecond

// Config is the fully resolved search configuration (spec §6).
type Config struct {
	LeadsPerPart int
	Parts        int

	TenorsTogether bool
	NicePartEnds   bool
	OptimumBalance bool
	LeadheadOnly   bool

	Calls int // 0 no calls, 1 bobs, 2 bobs+singles

	MinScore   int
	MinCOM     int
	MinBalance int

	COMScoreWeight     int
	BalanceScoreWeight int

	MinPartLength int
	MaxPartLength int

	MaxMethodsAtRepeatLimit int
}

// regenNone is the "recompute at next tenors-home" sentinel for regenPtr.
const regenNone = -1

// Driver holds all per-search mutable state: the slot-indexed choice
// arrays, repeat-limit counters, the leadhead-use bitmap (delegated to the
// composition buffer), and the rotational-sort regen pointer.
type Driver struct {
	Table      *node.Table
	Composites []method.CompositeMethod
	Methods    []*method.Method
	Cfg        Config

	buf *composer.Buffer
	top *topk.Buffer

	methodIndex []int // composite index per slot (or plain method index, leadhead-only)
	call        []method.CallKind

	firstHalfCount  []int
	secondHalfCount []int
	atLimitCount    int

	regenPtr int

	// lastTenorsHome is the slot index of the most recent tenors-home
	// crossing in the composition currently being built (-1 before the
	// first one). tenorsHomeHistory snapshots it per slot so backtrack can
	// restore it exactly, mirroring how methodIndex/call are undone.
	lastTenorsHome    int
	tenorsHomeHistory []int

	// progressRatios is the precomputed per-first-slot-choice weight table
	// used by Progress to report an exponentially-collapsed estimate of
	// search completion.
	progressRatios []float64

	startNode int

	// Stats, read by a concurrent monitor (spec §5): word-sized, plain
	// loads/stores only, no lock.
	Candidates int
	Accepted   int
	Iterations int
}

// NewDriver builds a driver ready to search from rounds.
func NewDriver(tbl *node.Table, composites []method.CompositeMethod, methods []*method.Method, cfg Config, top *topk.Buffer) *Driver {
	n := cfg.LeadsPerPart

	tbl.ResetRegenOffsets()

	d := &Driver{
		Table:             tbl,
		Composites:        composites,
		Methods:           methods,
		Cfg:               cfg,
		buf:               composer.New(tbl, composites, n, cfg.Parts),
		top:               top,
		methodIndex:       make([]int, n),
		call:              make([]method.CallKind, n),
		firstHalfCount:    make([]int, len(methods)),
		secondHalfCount:   make([]int, len(methods)),
		regenPtr:          regenNone,
		lastTenorsHome:    -1,
		tenorsHomeHistory: make([]int, n),
		startNode:         tbl.MustLookup(row.Rounds),
	}

	d.progressRatios = buildProgressRatios(d.candidateCompositeCount())

	return d
}

// Run drives the search to exhaustion or until ctx is cancelled, streaming
// accepted candidates into the top-K buffer.
func (d *Driver) Run(ctx context.Context) error {
	i := 0
	start := d.startNode

	lastStats := time.Now()

	for {
		d.Iterations++

		if d.Iterations%checkFreq == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if time.Since(lastStats) > statsInterval {
			lastStats = time.Now()
		}

		if i >= d.Cfg.LeadsPerPart {
			next, ok := d.onLeaf(i, start)
			if !ok {
				return nil // slot 0 exhausted
			}

			i = next
			start = d.currentStart(i)

			continue
		}

		advanced, descend := d.tryAdvance(i, start)
		if !advanced {
			next, ok := d.backtrack(i)
			if !ok {
				return nil
			}

			i = next
			start = d.currentStart(i)

			continue
		}

		if descend {
			i++
			start = d.buf.Leads[i-1].EndNode
		}
	}
}

// currentStart recomputes the starting node for slot i from the buffer.
func (d *Driver) currentStart(i int) int {
	if i == 0 {
		return d.startNode
	}

	return d.buf.Leads[i-1].EndNode
}

// candidateCompositeCount is the number of composite-method choices at a
// slot: N² for half-lead splicing, N for leadhead-only.
func (d *Driver) candidateCompositeCount() int {
	if d.Cfg.LeadheadOnly {
		return len(d.Methods)
	}

	return len(d.Composites)
}

func (d *Driver) allowedCalls() []method.CallKind {
	switch d.Cfg.Calls {
	case 2:
		return []method.CallKind{method.Plain, method.Bob, method.Single}
	case 1:
		return []method.CallKind{method.Plain, method.Bob}
	default:
		return []method.CallKind{method.Plain}
	}
}

// tryAdvance chooses the next composite/call at slot i, applying the gates
// of spec §4.6 step 2-3. Returns advanced=false to request a backtrack, or
// advanced=true with descend indicating the lead was appended.
func (d *Driver) tryAdvance(i, start int) (advanced, descend bool) {
	calls := d.allowedCalls()

	compIdx := d.methodIndex[i]
	callIdx := int(d.call[i])

	if compIdx >= d.candidateCompositeCount() {
		return false, false
	}

	if callIdx >= len(calls) {
		d.methodIndex[i]++
		d.call[i] = 0

		return d.tryAdvance(i, start)
	}

	usedRegen := d.regenPtr != regenNone && i > 0
	if usedRegen {
		d.methodIndex[i] = d.methodIndex[d.regenPtr]
		d.call[i] = d.call[d.regenPtr]
	}

	cm := d.compositeFor(d.methodIndex[i])

	if !d.firstHalfGate(cm) {
		d.skipSecondHalves(i)

		return false, false
	}

	if d.atLimitCount >= d.Cfg.MaxMethodsAtRepeatLimit {
		return false, false
	}

	if !d.Cfg.LeadheadOnly && !d.secondHalfGate(cm) {
		return false, false
	}

	d.Candidates++

	end := d.buf.Append(start, d.compositeSliceIndex(d.methodIndex[i]), d.call[i])

	if !d.buf.MarkLeadhead(d.Table.Nodes[end].LeadheadNumber) {
		d.buf.Pop()

		return false, false
	}

	if d.Cfg.TenorsTogether && !d.Table.Nodes[end].IsTenorsTogether {
		d.buf.UnmarkLeadhead(d.Table.Nodes[end].LeadheadNumber)
		d.buf.Pop()

		return false, false
	}

	if !d.comAchievable(i) {
		d.buf.UnmarkLeadhead(d.Table.Nodes[end].LeadheadNumber)
		d.buf.Pop()

		return false, false
	}

	d.tenorsHomeHistory[i] = d.lastTenorsHome

	if usedRegen {
		d.regenPtr++
	}

	if d.Table.Nodes[end].IsTenorsHome {
		d.recordTenorsHomeCrossing(i, end)
	}

	d.bumpCounts(cm, 1)

	return true, true
}

// recordTenorsHomeCrossing updates the rotational-sort regen bookkeeping
// when lead i's end node is tenors-home: it stamps the node's RegenOffset
// with the leads-back distance to the previous crossing (or to the start
// of the composition, when this is the first one), and arms regenPtr so
// the copy-forward mechanism in tryAdvance resumes from the matching
// earlier slot on the next lead.
func (d *Driver) recordTenorsHomeCrossing(i, end int) {
	d.Table.Nodes[end].RegenOffset = i - d.lastTenorsHome
	d.regenPtr = d.lastTenorsHome + 1
	d.lastTenorsHome = i
}

// compositeSliceIndex maps the leadhead-only single-method choice onto a
// stand-in composite index (i,i), since leadhead-only reuses the same
// composite-method machinery with first half = second half.
func (d *Driver) compositeSliceIndex(choice int) int {
	if !d.Cfg.LeadheadOnly {
		return choice
	}

	return choice*len(d.Methods) + choice
}

func (d *Driver) compositeFor(choice int) method.CompositeMethod {
	return d.Composites[d.compositeSliceIndex(choice)]
}

// repeatLimit is the maximum number of times a method may appear as a
// first half (or second half) within a composition.
// TODO: surface as a configured per-method repeat limit once exposed.
const repeatLimit = 2

func (d *Driver) firstHalfGate(cm method.CompositeMethod) bool {
	return d.firstHalfCount[cm.FirstIdx] < repeatLimit
}

func (d *Driver) secondHalfGate(cm method.CompositeMethod) bool {
	return d.secondHalfCount[cm.SecondIdx] < repeatLimit
}

func (d *Driver) skipSecondHalves(i int) {
	n := len(d.Methods)
	d.methodIndex[i] = (d.methodIndex[i]/n + 1) * n
	d.call[i] = 0
}

func (d *Driver) bumpCounts(cm method.CompositeMethod, delta int) {
	d.adjustCount(d.firstHalfCount, cm.FirstIdx, delta)

	if !d.Cfg.LeadheadOnly {
		d.adjustCount(d.secondHalfCount, cm.SecondIdx, delta)
	}
}

// adjustCount applies delta to counts[idx] and keeps atLimitCount in sync
// with how many (method, half) slots currently sit at repeatLimit — the
// at-limit-count gate in tryAdvance.
func (d *Driver) adjustCount(counts []int, idx, delta int) {
	before := counts[idx]
	counts[idx] += delta
	after := counts[idx]

	switch {
	case before < repeatLimit && after >= repeatLimit:
		d.atLimitCount++
	case before >= repeatLimit && after < repeatLimit:
		d.atLimitCount--
	}
}

// comAchievable applies spec §4.6 step 3(c)'s minimum-COM-achievable gate.
func (d *Driver) comAchievable(i int) bool {
	com := d.buf.COM[i]
	n := d.Cfg.LeadsPerPart

	if d.Cfg.LeadheadOnly {
		return com >= i+(d.Cfg.MinCOM-n)
	}

	return com >= 2*i+(d.Cfg.MinCOM+1-2*n)
}

// onLeaf handles spec §4.6 step 1: a candidate part end.
func (d *Driver) onLeaf(i, _ int) (next int, ok bool) {
	length := d.buf.Length[i-1]

	withinLength := (d.Cfg.MinPartLength == 0 || length >= d.Cfg.MinPartLength) &&
		(d.Cfg.MaxPartLength == 0 || length <= d.Cfg.MaxPartLength)

	endNode := d.buf.PartEnd()
	isCanonical := d.regenPtr <= regenNone || d.regenPtr*2 >= d.Cfg.LeadsPerPart

	if withinLength && isCanonical && d.Table.Nodes[endNode].NParts == d.Cfg.Parts {
		falseLeadIdx := d.checkComp()
		if falseLeadIdx >= 0 {
			return d.backtrack(falseLeadIdx)
		}
	}

	return d.backtrack(i)
}

// checkComp runs balance, minimum-COM, rotation, music, and truth checks
// on the current candidate (spec §4.6 step 1). It returns the offending
// lead index if truth fails within the first part (for jump-backtrack), or
// -1 when the candidate was fully evaluated (accepted or rejected on a
// non-truth ground).
func (d *Driver) checkComp() int {
	n := d.Cfg.LeadsPerPart
	com := d.buf.COM[n-1]

	if com < d.Cfg.MinCOM {
		return -1
	}

	balance := d.balance()
	if balance < d.Cfg.MinBalance {
		return -1
	}

	bestMusic := -1

	for r := 0; r < n; r++ {
		partEndRow := d.buf.RotationPartEnd(r)
		if !d.buf.RotationAdmissible(partEndRow, d.Cfg.TenorsTogether, d.Cfg.NicePartEnds) {
			continue
		}

		musicScore, exceeded := d.buf.CalcMusic(r, d.Cfg.MinScore)
		if !exceeded {
			continue
		}

		ok, falseLead := d.buf.TruthCheck()
		if !ok {
			if falseLead >= 0 {
				return falseLead
			}

			return -1
		}

		if musicScore > bestMusic {
			bestMusic = musicScore
		}
	}

	if bestMusic < 0 {
		return -1
	}

	score := bestMusic + com*d.Cfg.COMScoreWeight + balance*d.Cfg.BalanceScoreWeight

	d.Accepted++
	d.top.Offer(topk.Candidate{
		Score:   score,
		Music:   bestMusic,
		COM:     com,
		Balance: balance,
		Leads:   append([]composer.Lead(nil), d.buf.Leads...),
	})

	d.applyTightenedThresholds()

	return -1
}

// balance measures half-lead method balance: 100 when every method is
// used as first half exactly as often as it is used as second half
// across the composition (spec §6's "optimumBalance"), 0 otherwise; always
// 100 when optimumBalance is not requested.
func (d *Driver) balance() int {
	if !d.Cfg.OptimumBalance {
		return 100
	}

	for i := range d.firstHalfCount {
		if d.firstHalfCount[i] != d.secondHalfCount[i] {
			return 0
		}
	}

	return 100
}

func (d *Driver) applyTightenedThresholds() {
	if !d.top.Full() {
		return
	}

	worst := d.top.Worst()
	d.Cfg.MinScore = worst.Score
	d.Cfg.MinCOM = worst.COM
	d.Cfg.MinBalance = worst.Balance
}

// backtrack advances the choice at slot i (calls first, then method),
// propagating carries upward; it pops the composition buffer state for
// every slot it undoes. Returns ok=false once slot 0 is exhausted.
func (d *Driver) backtrack(i int) (next int, ok bool) {
	for i > 0 {
		i--

		cm := d.compositeFor(d.methodIndex[i])
		end := d.buf.Leads[i].EndNode

		d.bumpCounts(cm, -1)
		d.buf.UnmarkLeadhead(d.Table.Nodes[end].LeadheadNumber)
		d.buf.Pop()

		d.regenPtr = regenNone
		d.lastTenorsHome = d.tenorsHomeHistory[i]

		calls := d.allowedCalls()
		if int(d.call[i])+1 < len(calls) {
			d.call[i]++

			return i, true
		}

		d.call[i] = 0
		d.methodIndex[i]++

		if d.methodIndex[i] < d.candidateCompositeCount() {
			return i, true
		}

		d.methodIndex[i] = 0
	}

	return 0, false
}

// buildProgressRatios precomputes the relative share of the total search
// space each first-slot composite/method choice represents. Because the
// copy-forward mechanism collapses more of the remaining rotations for an
// early first-slot choice than a late one, a uniform 1/n weighting would
// make the reported progress fraction race ahead early and crawl late;
// weighting by 1/(k+1) and normalizing to sum to 1 keeps the fraction
// advancing roughly evenly across the whole search.
func buildProgressRatios(n int) []float64 {
	ratios := make([]float64, n)
	if n == 0 {
		return ratios
	}

	total := 0.0

	for k := 0; k < n; k++ {
		w := 1.0 / float64(k+1)
		ratios[k] = w
		total += w
	}

	for k := range ratios {
		ratios[k] /= total
	}

	return ratios
}

// Progress returns an exponentially-collapsed estimate in [0, 1] of how
// much of the configured search space has been explored: completed
// first-slot choices contribute their full precomputed ratio, and the
// first-slot choice currently in progress contributes a fraction of its
// ratio proportional to how far its own call loop has advanced.
func (d *Driver) Progress() float64 {
	if len(d.progressRatios) == 0 {
		return 0
	}

	k := d.methodIndex[0]
	if k > len(d.progressRatios) {
		k = len(d.progressRatios)
	}

	done := 0.0
	for j := 0; j < k; j++ {
		done += d.progressRatios[j]
	}

	if k < len(d.progressRatios) {
		numCalls := len(d.allowedCalls())
		if numCalls > 0 {
			done += d.progressRatios[k] * float64(d.call[0]) / float64(numCalls)
		}
	}

	if done > 1 {
		done = 1
	}

	return done
}

// SeedFromMusic rebuilds the node table's music-dependent state from defs;
// it does not reset search progress.
func (d *Driver) SeedFromMusic(defs []music.Definition) {
	music.Rebuild(d.Table, defs, d.Composites)
}

// String gives a short human summary of driver progress, a one-line
// candidate/accepted status suitable for a self-overwriting progress line.
func (d *Driver) String() string {
	return fmt.Sprintf("candidates=%d accepted=%d progress=%.1f%%", d.Candidates, d.Accepted, d.Progress()*100)
}

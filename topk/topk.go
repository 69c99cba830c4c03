// Package topk holds the bounded top-K output set the search driver feeds
// candidates into (spec §4.7): compositions are kept sorted by score
// descending, and once the buffer is full its new worst score/COM/balance
// become the driver's tightened pruning thresholds.
package topk

import (
	"sort"

	"touch-composer/composer"
)

// DefaultK is the default buffer size (spec §4.7).
const DefaultK = 10

// Candidate is an immutable value snapshot of one accepted composition,
// taken at emission time (spec §3's "Lifecycles").
type Candidate struct {
	Score   int
	Music   int
	COM     int
	Balance int
	Leads   []composer.Lead
}

// Buffer is the bounded, score-sorted top-K set.
type Buffer struct {
	k     int
	items []Candidate
}

// New creates an empty buffer holding at most k candidates.
func New(k int) *Buffer {
	if k <= 0 {
		k = DefaultK
	}

	return &Buffer{k: k, items: make([]Candidate, 0, k)}
}

// Full reports whether the buffer has reached its capacity.
func (b *Buffer) Full() bool {
	return len(b.items) >= b.k
}

// Len is the number of candidates currently held.
func (b *Buffer) Len() int {
	return len(b.items)
}

// Worst returns the lowest-scoring kept candidate. Only valid when Full.
func (b *Buffer) Worst() Candidate {
	return b.items[len(b.items)-1]
}

// Items returns the kept candidates, sorted best-first.
func (b *Buffer) Items() []Candidate {
	return b.items
}

// Offer inserts c if it improves on the current worst kept candidate (or
// the buffer is not yet full), keeping the set sorted by score descending.
func (b *Buffer) Offer(c Candidate) bool {
	if b.Full() && c.Score <= b.Worst().Score {
		return false
	}

	idx := sort.Search(len(b.items), func(i int) bool { return b.items[i].Score <= c.Score })

	b.items = append(b.items, Candidate{})
	copy(b.items[idx+1:], b.items[idx:])
	b.items[idx] = c

	if len(b.items) > b.k {
		b.items = b.items[:b.k]
	}

	return true
}

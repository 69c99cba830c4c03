package topk

import "testing"

func TestOfferKeepsSortedDescending(t *testing.T) {
	b := New(3)

	for _, s := range []int{5, 9, 1, 7} {
		b.Offer(Candidate{Score: s})
	}

	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}

	want := []int{9, 7, 5}
	for i, c := range items {
		if c.Score != want[i] {
			t.Errorf("items[%d].Score = %d, want %d", i, c.Score, want[i])
		}
	}
}

func TestOfferRejectsBelowWorstWhenFull(t *testing.T) {
	b := New(2)

	b.Offer(Candidate{Score: 10})
	b.Offer(Candidate{Score: 8})

	if b.Offer(Candidate{Score: 3}) {
		t.Error("Offer should reject a candidate worse than the current worst kept")
	}

	if b.Worst().Score != 8 {
		t.Errorf("Worst().Score = %d, want 8", b.Worst().Score)
	}
}

func TestFullReportsAtCapacity(t *testing.T) {
	b := New(1)

	if b.Full() {
		t.Error("empty buffer should not be full")
	}

	b.Offer(Candidate{Score: 1})

	if !b.Full() {
		t.Error("buffer at capacity should report full")
	}
}

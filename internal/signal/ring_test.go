package signal

import "testing"

func TestRing_EvictsOldestBeyondCapacity(t *testing.T) {
	const capacity = 10
	r := NewRing[int](capacity)

	// Insert capacity+5 items; only the last capacity survive, in order.
	for i := 0; i < capacity+5; i++ {
		r.Push(i)
	}

	if r.Len() != capacity {
		t.Fatalf("expected len %d, got %d", capacity, r.Len())
	}

	items := r.Items()
	for i, v := range items {
		want := i + 5
		if v != want {
			t.Errorf("items[%d] = %d, want %d", i, v, want)
		}
	}
}

func TestRing_PartialFill(t *testing.T) {
	r := NewRing[string](5)
	r.Push("a")
	r.Push("b")

	if r.Len() != 2 {
		t.Fatalf("expected len 2, got %d", r.Len())
	}
	items := r.Items()
	if items[0] != "a" || items[1] != "b" {
		t.Errorf("unexpected order: %v", items)
	}
}

func TestRing_Reset(t *testing.T) {
	r := NewRing[int](3)
	r.Push(1)
	r.Push(2)
	r.Reset()

	if r.Len() != 0 {
		t.Errorf("expected empty ring after reset, got len %d", r.Len())
	}
	if len(r.Items()) != 0 {
		t.Errorf("expected no items after reset, got %v", r.Items())
	}

	// Reusable after reset.
	r.Push(9)
	if got := r.Items(); len(got) != 1 || got[0] != 9 {
		t.Errorf("expected [9] after reuse, got %v", got)
	}
}

func TestRing_NonPositiveCapacity(t *testing.T) {
	r := NewRing[int](0)
	r.Push(1)
	r.Push(2)
	if r.Len() != 1 {
		t.Errorf("expected capacity to clamp to 1, got len %d", r.Len())
	}
	if r.Items()[0] != 2 {
		t.Errorf("expected newest item to survive, got %v", r.Items())
	}
}

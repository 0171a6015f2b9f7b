package access

import "testing"

func TestBitSetSetHasClear(t *testing.T) {
	b := NewBitSet(0)
	b.Set(3)
	b.Set(130)
	if !b.Has(3) || !b.Has(130) {
		t.Fatalf("expected bits 3 and 130 set")
	}
	if b.Has(4) {
		t.Fatalf("bit 4 should not be set")
	}
	b.Clear(3)
	if b.Has(3) {
		t.Fatalf("bit 3 should have been cleared")
	}
}

func TestBitSetIsDisjointAndAnyIntersect(t *testing.T) {
	a := FromIndices(1, 2, 3)
	b := FromIndices(4, 5, 6)
	if !a.IsDisjoint(b) {
		t.Fatalf("a and b should be disjoint")
	}
	if a.anyIntersect(b) {
		t.Fatalf("anyIntersect must be the negation of IsDisjoint")
	}

	c := FromIndices(3, 9)
	if a.IsDisjoint(c) {
		t.Fatalf("a and c share index 3, must not be disjoint")
	}
	if !a.anyIntersect(c) {
		t.Fatalf("anyIntersect must report the shared index 3")
	}
}

func TestBitSetCountAndForEach(t *testing.T) {
	b := FromIndices(0, 5, 64, 200)
	if b.Count() != 4 {
		t.Fatalf("expected count 4, got %d", b.Count())
	}
	var seen []int
	b.ForEach(func(idx int) bool {
		seen = append(seen, idx)
		return true
	})
	if len(seen) != 4 || seen[0] != 0 || seen[3] != 200 {
		t.Fatalf("unexpected ForEach order: %v", seen)
	}
}

func TestBitSetNilReceiverIsEmptyAndDisjoint(t *testing.T) {
	var b *BitSet
	if !b.IsEmpty() {
		t.Fatalf("nil bitset must be empty")
	}
	other := FromIndices(1)
	if !b.IsDisjoint(other) {
		t.Fatalf("nil bitset must be disjoint from anything")
	}
}

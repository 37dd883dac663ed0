package determinism

import (
	"testing"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"kitchen": 1, "bath": 2, "living": 3}
	keys := SortedKeys(m)
	expected := []string{"bath", "kitchen", "living"}
	for i, k := range expected {
		if keys[i] != k {
			t.Errorf("expected %s at %d, got %s", k, i, keys[i])
		}
	}
}

func TestRangeMapSortedStops(t *testing.T) {
	m := map[int]string{3: "c", 1: "a", 2: "b"}
	var seen []int
	RangeMapSorted(m, func(k int, _ string) bool {
		seen = append(seen, k)
		return k < 2
	})
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("expected [1 2], got %v", seen)
	}
}

func TestIDGeneratorIsStable(t *testing.T) {
	g := NewIDGenerator("item")
	a := g.ItemID("area-1", 0)
	b := g.ItemID("area-1", 0)
	c := g.ItemID("area-1", 1)
	if a != b {
		t.Errorf("expected equal ids, got %s and %s", a, b)
	}
	if a == c {
		t.Error("expected different ids for different indexes")
	}
	if len(a) != 16 {
		t.Errorf("expected 16 char id, got %d", len(a))
	}
}

func TestHashJSONIgnoresMapOrder(t *testing.T) {
	a := map[string]int{"x": 1, "y": 2}
	b := map[string]int{"y": 2, "x": 1}
	ha, err := HashJSON(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashJSON(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Errorf("expected equal hashes, got %s and %s", ha.Hex(), hb.Hex())
	}
}

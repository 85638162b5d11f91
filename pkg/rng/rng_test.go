package rng

import "testing"

func TestDeterminism(t *testing.T) {
	a := New(12345)
	b := New(12345)
	for i := 0; i < 200; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("draw %d diverged: %v vs %v", i, av, bv)
		}
	}
}

func TestFloat64Range(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64 out of [0,1): %v", v)
		}
	}
}

func TestIntN(t *testing.T) {
	s := New(99)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := s.IntN(10)
		if v < 0 || v >= 10 {
			t.Fatalf("IntN(10) out of range: %d", v)
		}
		seen[v] = true
	}
	if len(seen) < 10 {
		t.Errorf("IntN(10) hit only %d distinct values in 1000 draws", len(seen))
	}

	// Non-positive n is documented to return 0.
	if v := s.IntN(0); v != 0 {
		t.Errorf("IntN(0) = %d, want 0", v)
	}
	if v := s.IntN(-3); v != 0 {
		t.Errorf("IntN(-3) = %d, want 0", v)
	}
}

func TestSplitDoesNotAdvanceParent(t *testing.T) {
	a := New(42)
	b := New(42)
	a.Split("feature")
	a.Split("other")
	for i := 0; i < 50; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("Split advanced parent state (draw %d: %v vs %v)", i, av, bv)
		}
	}
}

func TestSplitSameLabelSameChild(t *testing.T) {
	a := New(42).Split("craters")
	b := New(42).Split("craters")
	for i := 0; i < 100; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("identically derived children diverged at draw %d", i)
		}
	}
}

func TestSplitIndependence(t *testing.T) {
	a := New(42).Split("a")
	b := New(42).Split("b")
	matches := 0
	const draws = 200
	for i := 0; i < draws; i++ {
		if a.Float64() == b.Float64() {
			matches++
		}
	}
	if matches > draws/10 {
		t.Errorf("children of different labels matched on %d/%d draws", matches, draws)
	}
}

func TestRange(t *testing.T) {
	s := New(5)
	for i := 0; i < 500; i++ {
		v := s.Range(-0.1, 0.1)
		if v < -0.1 || v >= 0.1 {
			t.Fatalf("Range(-0.1, 0.1) out of bounds: %v", v)
		}
	}
}

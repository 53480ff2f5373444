// Copyright 2022 Daniel Erat.
// All rights reserved.

package boundarygen

import "testing"

func TestNextDeterministic(t *testing.T) {
	seed := uint64(7)
	g1, err := New(&seed)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	g2, err := New(&seed)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		a, b := g1.Next(), g2.Next()
		if a != b {
			t.Fatalf("iteration %d: g1.Next() = %q, g2.Next() = %q, want equal", i, a, b)
		}
		if len(a) != boundaryLen {
			t.Errorf("len(Next()) = %d, want %d", len(a), boundaryLen)
		}
	}
}

func TestNextVariesAcrossCalls(t *testing.T) {
	seed := uint64(1)
	g, err := New(&seed)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	first := g.Next()
	second := g.Next()
	if first == second {
		t.Error("consecutive Next() calls returned identical boundaries")
	}
}

func TestNextAlphabet(t *testing.T) {
	seed := uint64(3)
	g, err := New(&seed)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for _, c := range g.Next() {
		ok := (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
		if !ok {
			t.Errorf("boundary contains non-alphanumeric byte %q", c)
		}
	}
}

func TestNewWithoutSeed(t *testing.T) {
	g, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) failed: %v", err)
	}
	if len(g.Next()) != boundaryLen {
		t.Error("New(nil) generator produced a boundary of the wrong length")
	}
}

package utils

import (
	"testing"
)

func TestSet(t *testing.T) {
	// Sets are created empty.
	s := MakeSet[uint32](10)
	if len(s) != 0 {
		t.Errorf("expected len 0, got %d", len(s))
	}

	// Check inserting and recovery.
	s.Insert(3, 7)
	if len(s) != 2 {
		t.Errorf("expected len 2, got %d", len(s))
	}
	if !s.Has(3) {
		t.Errorf("expected s.Has(3) to be true")
	}
	if !s.Has(7) {
		t.Errorf("expected s.Has(7) to be true")
	}
	if s.Has(5) {
		t.Errorf("expected s.Has(5) to be false")
	}

	s2 := SetWith[uint32](5, 7)
	if len(s2) != 2 {
		t.Errorf("expected len 2, got %d", len(s2))
	}

	s3 := s.Sub(s2)
	if len(s3) != 1 || !s3.Has(3) {
		t.Errorf("expected s3 == {3}, got %v", s3)
	}

	u := s.Union(s2)
	for _, key := range []uint32{3, 5, 7} {
		if !u.Has(key) {
			t.Errorf("expected union to contain %d", key)
		}
	}
	if len(u) != 3 {
		t.Errorf("expected union len 3, got %d", len(u))
	}

	delete(s, 7)
	if !s.Equal(s3) {
		t.Errorf("expected s.Equal(s3) to be true")
	}
	if s.Equal(s2) {
		t.Errorf("expected s.Equal(s2) to be false")
	}
	if s.Equal(SetWith[uint32](4)) {
		t.Errorf("expected sets with different elements to differ")
	}
}

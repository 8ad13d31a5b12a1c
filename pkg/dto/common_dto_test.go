package dto

import "testing"

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(2, 10, 21)
	if meta.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", meta.TotalPages)
	}
	if meta.CurrentPage != 2 || meta.Limit != 10 || meta.TotalItems != 21 {
		t.Fatalf("unexpected meta %+v", meta)
	}

	if NewPaginationMeta(1, 10, 0).TotalPages != 0 {
		t.Fatal("expected zero pages for empty result")
	}
}

func TestEventFilterNormalize(t *testing.T) {
	var f EventFilter
	f.Normalize()
	if f.Page != 1 || f.Limit != 12 {
		t.Fatalf("unexpected defaults %+v", f)
	}
}

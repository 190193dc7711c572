package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("expected default limit for negatives, got %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 1); got != MaxLimit {
		t.Fatalf("expected max limit cap, got %d", got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("expected passthrough, got %d", got)
	}
}

func TestNormalize(t *testing.T) {
	p := Params{Limit: 500, Offset: -3}.Normalize()
	if p.Limit != MaxLimit {
		t.Fatalf("expected capped limit, got %d", p.Limit)
	}
	if p.Offset != 0 {
		t.Fatalf("expected clamped offset, got %d", p.Offset)
	}
}

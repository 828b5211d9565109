package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireRendered fails t if got and want differ in length or any sample
// differs by more than eps.
func RequireRendered(t *testing.T, got []float32, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(float64(got[i]) - want[i]); diff > eps {
			t.Fatalf("frame %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireSilent fails t if any sample of x is not exactly zero.
func RequireSilent(t *testing.T, x []float32) {
	t.Helper()
	for i, v := range x {
		if v != 0 {
			t.Fatalf("frame %d: got %v, want silence", i, v)
		}
	}
}

// RequireFinite fails t if any sample is NaN or Inf.
func RequireFinite(t *testing.T, x []float32) {
	t.Helper()
	for i, v := range x {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("frame %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the largest absolute difference between a and b.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	var m float64
	for i := range a {
		m = math.Max(m, math.Abs(a[i]-b[i]))
	}
	return m, nil
}

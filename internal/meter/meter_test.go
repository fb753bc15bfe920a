package meter

import (
	"math"
	"testing"
)

func TestPeakAndRMS(t *testing.T) {
	cases := []struct {
		name string
		in   []float32
		peak float32
		rms  float32
	}{
		{"empty", nil, 0, 0},
		{"constant", []float32{0.5, 0.5, 0.5, 0.5}, 0.5, 0.5},
		{"negative peak", []float32{0.1, -0.9, 0.3}, 0.9, float32(math.Sqrt((0.01 + 0.81 + 0.09) / 3))},
		{"square", []float32{1, -1, 1, -1}, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Peak(tc.in); math.Abs(float64(got-tc.peak)) > 1e-6 {
				t.Errorf("peak = %f, want %f", got, tc.peak)
			}
			if got := RMS(tc.in); math.Abs(float64(got-tc.rms)) > 1e-6 {
				t.Errorf("rms = %f, want %f", got, tc.rms)
			}
		})
	}
}

func TestPeakDoesNotModifyInput(t *testing.T) {
	in := []float32{-0.25, 0.5}
	Peak(in)
	if in[0] != -0.25 {
		t.Errorf("input modified: %v", in)
	}
}

func TestWindowPeaks(t *testing.T) {
	in := []float32{0.1, -0.2, 0.3, 0.4, -0.5, 0.6, 0.7}
	got := WindowPeaks(in, 3)
	want := []float32{0.3, 0.6}
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("window %d: got %f, want %f", i, got[i], want[i])
		}
	}
	if WindowPeaks(in, 0) != nil {
		t.Error("zero window size should return nil")
	}
}

func TestDBFS(t *testing.T) {
	if got := DBFS(1); math.Abs(float64(got)) > 1e-6 {
		t.Errorf("DBFS(1) = %f, want 0", got)
	}
	if got := DBFS(0.5); math.Abs(float64(got)+6.0206) > 1e-3 {
		t.Errorf("DBFS(0.5) = %f, want -6.02", got)
	}
	if got := DBFS(0); !math.IsInf(float64(got), -1) {
		t.Errorf("DBFS(0) = %f, want -Inf", got)
	}
}

package lfo

import (
	"math"
	"testing"

	"github.com/cbegin/synthvoice-go/internal/osc"
)

func TestLFOTriangleBasicShape(t *testing.T) {
	l := New(100, 1.0, osc.WaveformTriangle) // 100 samples per cycle

	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = l.Sample()
	}

	// At phase 0, triangle should be -1
	if math.Abs(float64(samples[0])-(-1.0)) > 0.05 {
		t.Errorf("triangle at phase 0: got %f, want -1.0", samples[0])
	}
	// At phase 0.25 (sample 25), should be ~0
	if math.Abs(float64(samples[25])) > 0.05 {
		t.Errorf("triangle at phase 0.25: got %f, want ~0", samples[25])
	}
	// At phase 0.5 (sample 50), should be 1.0
	if math.Abs(float64(samples[50])-1.0) > 0.05 {
		t.Errorf("triangle at phase 0.5: got %f, want 1.0", samples[50])
	}
}

func TestLFOSquareShape(t *testing.T) {
	l := New(100, 1.0, osc.WaveformSquare)

	v := l.Sample()
	if math.Abs(float64(v)-1.0) > 0.01 {
		t.Errorf("square first half: got %f, want 1.0", v)
	}
	// Skip to second half
	for i := 1; i < 60; i++ {
		l.Sample()
	}
	v = l.Sample()
	if math.Abs(float64(v)-(-1.0)) > 0.01 {
		t.Errorf("square second half: got %f, want -1.0", v)
	}
}

func TestLFOSineStartsAtZero(t *testing.T) {
	l := New(48000, 5, osc.WaveformSine)
	if v := l.Sample(); math.Abs(float64(v)) > 1e-6 {
		t.Errorf("sine at phase 0: got %f, want 0", v)
	}
	if p := l.Period(); p != 9600 {
		t.Errorf("period at 5Hz = %f samples, want 9600", p)
	}
}

func TestLFOWaveformSwapKeepsPhase(t *testing.T) {
	l := New(1000, 2, osc.WaveformSine)
	for i := 0; i < 77; i++ {
		l.Sample()
	}
	phase := l.Phase()
	l.SetWaveform(osc.WaveformSaw)
	if l.Phase() != phase || l.Rate() != 2 {
		t.Errorf("swap moved phase %f->%f or rate %f", phase, l.Phase(), l.Rate())
	}
	if l.Waveform() != osc.WaveformSaw {
		t.Errorf("waveform = %v, want saw", l.Waveform())
	}
}

func TestLFOZeroRateHolds(t *testing.T) {
	l := New(44100, 0, osc.WaveformTriangle)
	a := l.Sample()
	b := l.Sample()
	if a != b {
		t.Errorf("zero rate LFO moved: %f then %f", a, b)
	}
}

func TestLFOReset(t *testing.T) {
	l := New(1000, 10, osc.WaveformSaw)
	for i := 0; i < 33; i++ {
		l.Sample()
	}
	l.Reset()
	if l.Phase() != 0 {
		t.Errorf("phase after reset = %f", l.Phase())
	}
}

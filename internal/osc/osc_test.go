package osc

import (
	"errors"
	"math"
	"testing"

	"github.com/cbegin/synthvoice-go/internal/dsp"
)

const sr = 48000

func mustOsc(t *testing.T, w Waveform, hz float32) *Oscillator {
	t.Helper()
	o, err := New(sr, w, hz)
	if err != nil {
		t.Fatalf("new oscillator: %v", err)
	}
	return o
}

func TestShapeWaveforms(t *testing.T) {
	for _, tc := range []struct {
		w     Waveform
		phase float32
		want  float32
	}{
		{WaveformSine, 0, 0},
		{WaveformSine, 0.25, 1},
		{WaveformSine, 0.75, -1},
		{WaveformSaw, 0, -1},
		{WaveformSaw, 0.5, 0},
		{WaveformSquare, 0.1, 1},
		{WaveformSquare, 0.6, -1},
		{WaveformTriangle, 0, -1},
		{WaveformTriangle, 0.5, 1},
		{WaveformNone, 0.3, 0},
	} {
		t.Run(tc.w.String(), func(t *testing.T) {
			got := Shape(tc.w, tc.phase)
			if math.Abs(float64(got-tc.want)) > 0.01 {
				t.Errorf("Shape(%v, %v) = %f, want %f", tc.w, tc.phase, got, tc.want)
			}
		})
	}
}

func TestParseWaveformRoundTrip(t *testing.T) {
	for w := WaveformNone; w <= WaveformTriangle; w++ {
		got, err := ParseWaveform(w.String())
		if err != nil {
			t.Fatalf("parse %q: %v", w.String(), err)
		}
		if got != w {
			t.Errorf("ParseWaveform(%q) = %v, want %v", w.String(), got, w)
		}
	}
	if _, err := ParseWaveform("wobble"); err == nil {
		t.Error("expected error for unknown waveform")
	}
}

func TestOscillatorPeriod(t *testing.T) {
	o := mustOsc(t, WaveformSine, 480) // 100 samples per cycle
	var crossings int
	prev := o.NextSample()
	for i := 1; i < 1000; i++ {
		s := o.NextSample()
		if prev < 0 && s >= 0 {
			crossings++
		}
		prev = s
	}
	if crossings < 9 || crossings > 10 {
		t.Errorf("expected ~10 rising zero crossings in 1000 samples at 480Hz, got %d", crossings)
	}
}

func TestOscillatorDetune(t *testing.T) {
	o := mustOsc(t, WaveformSine, 440)
	if err := o.SetDetune(12); err != nil {
		t.Fatalf("detune: %v", err)
	}
	if got := o.EffectiveFrequency(); math.Abs(float64(got)-880) > 0.1 {
		t.Errorf("one octave up = %f, want 880", got)
	}
	if err := o.SetDetune(100); !errors.Is(err, dsp.ErrValidation) {
		t.Errorf("expected ErrValidation for 100 semitones, got %v", err)
	}
	if got := o.Detune(); got != 12 {
		t.Errorf("rejected detune changed state: %v", got)
	}
}

func TestOscillatorSetWaveformKeepsPhase(t *testing.T) {
	o := mustOsc(t, WaveformSaw, 100)
	for i := 0; i < 123; i++ {
		o.NextSample()
	}
	phase := o.Phase()
	if err := o.SetWaveform(WaveformSquare); err != nil {
		t.Fatalf("set waveform: %v", err)
	}
	if o.Phase() != phase || o.Frequency() != 100 {
		t.Errorf("waveform swap moved phase/frequency: phase %v->%v freq %v", phase, o.Phase(), o.Frequency())
	}
	if err := o.SetWaveform(WaveformNone); !errors.Is(err, dsp.ErrValidation) {
		t.Errorf("expected ErrValidation for none, got %v", err)
	}
}

func TestEmptyBankIsSilent(t *testing.T) {
	b, err := NewBank(sr)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if s := b.Mix(); s != 0 {
			t.Fatalf("empty bank produced %f", s)
		}
	}
}

func TestBankIndexErrors(t *testing.T) {
	b, _ := NewBank(sr)
	if err := b.Append(mustOsc(t, WaveformSine, 440)); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		name string
		call func() error
	}{
		{"set", func() error { return b.Set(1, mustOsc(t, WaveformSaw, 440)) }},
		{"set negative", func() error { return b.Set(-1, mustOsc(t, WaveformSaw, 440)) }},
		{"remove", func() error { _, err := b.Remove(3); return err }},
		{"gain", func() error { return b.SetGain(1, 0.5) }},
		{"detune", func() error { return b.SetDetune(2, 1) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, dsp.ErrIndex) {
				t.Errorf("expected ErrIndex, got %v", err)
			}
		})
	}
	if b.Len() != 1 {
		t.Errorf("failed mutations changed bank size to %d", b.Len())
	}
}

func TestBankCapacity(t *testing.T) {
	b, _ := NewBank(sr)
	for i := 0; i < MaxSources; i++ {
		if err := b.Append(mustOsc(t, WaveformSine, 440)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := b.Append(mustOsc(t, WaveformSine, 440)); !errors.Is(err, dsp.ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if b.Len() != MaxSources {
		t.Errorf("len = %d, want %d", b.Len(), MaxSources)
	}
}

func TestBankRejectsForeignSampleRate(t *testing.T) {
	b, _ := NewBank(sr)
	o, err := New(44100, WaveformSine, 440)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Append(o); !errors.Is(err, dsp.ErrValidation) {
		t.Errorf("expected ErrValidation for 44.1kHz source in 48kHz bank, got %v", err)
	}
}

func TestBankSetFrequencyBoundaries(t *testing.T) {
	b, _ := NewBank(sr)
	_ = b.Append(mustOsc(t, WaveformSine, 440))
	if err := b.SetFrequency(0); !errors.Is(err, dsp.ErrValidation) {
		t.Errorf("0 Hz: expected ErrValidation, got %v", err)
	}
	if err := b.SetFrequency(sr); !errors.Is(err, dsp.ErrValidation) {
		t.Errorf("sample rate: expected ErrValidation, got %v", err)
	}
	src, _ := b.At(0)
	if src.Frequency() != 440 {
		t.Errorf("rejected frequency leaked into source: %v", src.Frequency())
	}
	if err := b.SetFrequency(sr/2 - 0.01); err != nil {
		t.Errorf("just below Nyquist: %v", err)
	}
}

func TestBankFrequencyAppliesDetunePerSource(t *testing.T) {
	b, _ := NewBank(sr)
	lo := mustOsc(t, WaveformSine, 100)
	hi := mustOsc(t, WaveformSine, 100)
	_ = b.Append(lo)
	_ = b.Append(hi)
	if err := b.SetDetune(1, 12); err != nil {
		t.Fatal(err)
	}
	if err := b.SetFrequency(220); err != nil {
		t.Fatal(err)
	}
	if lo.EffectiveFrequency() != 220 {
		t.Errorf("undetuned source = %v, want 220", lo.EffectiveFrequency())
	}
	if math.Abs(float64(hi.EffectiveFrequency())-440) > 0.01 {
		t.Errorf("detuned source = %v, want 440", hi.EffectiveFrequency())
	}
	late := mustOsc(t, WaveformSaw, 1000)
	if err := b.Append(late); err != nil {
		t.Fatal(err)
	}
	if late.Frequency() != 220 {
		t.Errorf("appended source should follow bank frequency, got %v", late.Frequency())
	}
}

func TestDetunedFrequencyStaysBelowNyquist(t *testing.T) {
	o := mustOsc(t, WaveformSaw, 3000)
	if err := o.SetDetune(48); !errors.Is(err, dsp.ErrValidation) {
		t.Errorf("3 kHz +48 semitones: expected ErrValidation, got %v", err)
	}
	if o.Detune() != 0 || o.EffectiveFrequency() != 3000 {
		t.Errorf("rejected detune changed state: %v semitones, %v Hz", o.Detune(), o.EffectiveFrequency())
	}
	if err := o.SetDetune(12); err != nil {
		t.Fatal(err)
	}
	if err := o.SetFrequency(sr / 3); !errors.Is(err, dsp.ErrValidation) {
		t.Errorf("base %v Hz an octave up: expected ErrValidation, got %v", sr/3, err)
	}

	b, _ := NewBank(sr)
	_ = b.SetFrequency(1000)
	_ = b.Append(mustOsc(t, WaveformSine, 1000))
	_ = b.Append(mustOsc(t, WaveformSine, 1000))
	if err := b.SetDetune(1, 24); err != nil {
		t.Fatal(err)
	}
	if err := b.SetFrequency(8000); !errors.Is(err, dsp.ErrValidation) {
		t.Errorf("8 kHz with a +24 source: expected ErrValidation, got %v", err)
	}
	if b.Frequency() != 1000 {
		t.Errorf("rejected frequency changed the base: %v", b.Frequency())
	}
	for i := 0; i < b.Len(); i++ {
		if src, _ := b.At(i); src.Frequency() != 1000 {
			t.Errorf("source %d base = %v after rejected frequency", i, src.Frequency())
		}
	}
	high := mustOsc(t, WaveformSine, 100)
	_ = high.SetDetune(48)
	if err := b.SetFrequency(2000); err != nil {
		t.Fatal(err)
	}
	if err := b.Append(high); !errors.Is(err, dsp.ErrValidation) {
		t.Errorf("appending a +48 source at 2 kHz: expected ErrValidation, got %v", err)
	}
	if b.Len() != 2 || high.Frequency() != 100 {
		t.Errorf("rejected append changed state: len %d, base %v", b.Len(), high.Frequency())
	}
}

func TestBankRemoveTransfersOwnership(t *testing.T) {
	b, _ := NewBank(sr)
	a := mustOsc(t, WaveformSine, 440)
	second := mustOsc(t, WaveformSaw, 220)
	third := mustOsc(t, WaveformSquare, 110)
	for _, o := range []*Oscillator{a, second, third} {
		if err := b.Append(o); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 37; i++ {
		b.Mix()
	}

	removed, err := b.Remove(0)
	if err != nil {
		t.Fatal(err)
	}
	if removed != a {
		t.Fatal("Remove returned the wrong source")
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
	if got, _ := b.At(0); got != second {
		t.Error("index 1 did not shift down to 0")
	}
	if got, _ := b.At(1); got != third {
		t.Error("index 2 did not shift down to 1")
	}

	ref := mustOsc(t, WaveformSine, 440)
	for i := 0; i < 37; i++ {
		ref.NextSample()
	}
	// Mutating the bank must not reach the detached oscillator.
	_ = b.SetFrequency(880)
	_ = b.SetGain(0, 0.1)
	_ = b.Append(mustOsc(t, WaveformTriangle, 330))
	for i := 0; i < 200; i++ {
		b.Mix()
		if got, want := removed.NextSample(), ref.NextSample(); got != want {
			t.Fatalf("sample %d: removed oscillator %f, reference %f", i, got, want)
		}
	}
}

func TestBankAllowsEmpty(t *testing.T) {
	b, _ := NewBank(sr)
	_ = b.Append(mustOsc(t, WaveformSine, 440))
	if _, err := b.Remove(0); err != nil {
		t.Fatalf("removing last source: %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("len = %d", b.Len())
	}
	if err := b.SetFrequency(330); err != nil {
		t.Errorf("SetFrequency on empty bank: %v", err)
	}
	if b.Frequency() != 330 {
		t.Errorf("base frequency = %v, want 330", b.Frequency())
	}
}

func TestBankMixAppliesGain(t *testing.T) {
	b, _ := NewBank(sr)
	sq := mustOsc(t, WaveformSquare, 100)
	_ = b.Append(sq)
	_ = b.SetGain(0, 0.25)
	if got := b.Mix(); math.Abs(float64(got)-0.25) > 1e-6 {
		t.Errorf("mix = %f, want 0.25", got)
	}
	_ = b.Append(mustOsc(t, WaveformSquare, 100))
	if got := b.Mix(); math.Abs(float64(got)-1.25) > 1e-6 {
		t.Errorf("mix of two squares = %f, want 1.25", got)
	}
}

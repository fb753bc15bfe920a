package preset

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/cbegin/synthvoice-go"
)

func loadPad(t *testing.T) *Patch {
	t.Helper()
	p, err := Load(filepath.Join("testdata", "pad.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return p
}

func TestLoadAndBuildVoice(t *testing.T) {
	p := loadPad(t)
	if p.Name != "warm pad" || len(p.Oscillators) != 3 {
		t.Fatalf("unexpected patch: %+v", p)
	}
	v, err := p.NewVoice(48000)
	if err != nil {
		t.Fatalf("new voice: %v", err)
	}
	s := v.Snapshot()
	if s.Frequency != 220 || len(s.Sources) != 3 {
		t.Fatalf("snapshot: %+v", s)
	}
	if s.Sources[1].Waveform != synthvoice.WaveformSquare || s.Sources[1].Detune != -12 || s.Sources[1].Gain != 0.25 {
		t.Errorf("source 1 = %+v", s.Sources[1])
	}
	if s.Sources[2].Gain != 1 {
		t.Errorf("omitted gain = %f, want 1", s.Sources[2].Gain)
	}
	if s.Filter == nil || s.Filter.Kind != synthvoice.FilterLowPass || s.Filter.Frequency != 1800 {
		t.Errorf("filter = %+v", s.Filter)
	}
	if s.Envelope == nil || s.Envelope.Release != 1.2 {
		t.Errorf("envelope = %+v", s.Envelope)
	}
	if m := s.Modulation; m == nil || m.Type != synthvoice.ModulationVibrato || m.Waveform != synthvoice.WaveformSine || m.Rate != 5.5 || m.Depth != 0.6 {
		t.Errorf("modulation = %+v", s.Modulation)
	}
}

func TestApplyReplacesExistingConfiguration(t *testing.T) {
	v, err := synthvoice.New(44100,
		synthvoice.WithOscillator(synthvoice.WaveformSine, 1, 0),
		synthvoice.WithFilter(synthvoice.FilterNotch, 500, 50),
		synthvoice.WithModulation(synthvoice.ModulationAmplitude, synthvoice.WaveformSquare),
	)
	if err != nil {
		t.Fatal(err)
	}
	p, err := Parse([]byte("oscillators:\n  - waveform: saw\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Apply(v); err != nil {
		t.Fatal(err)
	}
	s := v.Snapshot()
	if len(s.Sources) != 1 || s.Sources[0].Waveform != synthvoice.WaveformSaw {
		t.Errorf("sources = %+v", s.Sources)
	}
	if s.Filter != nil || s.Envelope != nil || s.Modulation != nil {
		t.Errorf("stages not cleared: %+v", s)
	}
}

func TestCaptureRoundTrip(t *testing.T) {
	v, err := loadPad(t).NewVoice(48000)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "captured.yml")
	if err := Capture(v).Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	w, err := loaded.NewVoice(48000)
	if err != nil {
		t.Fatal(err)
	}
	a, b := v.Snapshot(), w.Snapshot()
	if len(a.Sources) != len(b.Sources) {
		t.Fatalf("source count %d vs %d", len(a.Sources), len(b.Sources))
	}
	for i := range a.Sources {
		if a.Sources[i] != b.Sources[i] {
			t.Errorf("source %d: %+v vs %+v", i, a.Sources[i], b.Sources[i])
		}
	}
	if *a.Filter != *b.Filter || *a.Envelope != *b.Envelope || *a.Modulation != *b.Modulation || a.Frequency != b.Frequency {
		t.Errorf("stages differ after round trip:\n%+v\n%+v", a, b)
	}
	for i := 0; i < 4096; i++ {
		if x, y := v.NextSample(), w.NextSample(); x != y {
			t.Fatalf("sample %d: %f vs %f", i, x, y)
		}
	}
}

func TestCaptureKeepsModulationTypeWithoutStage(t *testing.T) {
	v, err := synthvoice.New(48000)
	if err != nil {
		t.Fatal(err)
	}
	_ = v.SetModulationType(synthvoice.ModulationVibrato)
	p := Capture(v)
	w, err := p.NewVoice(48000)
	if err != nil {
		t.Fatal(err)
	}
	if w.ModulationType() != synthvoice.ModulationVibrato || w.ModulationOscillator() != synthvoice.WaveformNone {
		t.Errorf("type %v oscillator %v", w.ModulationType(), w.ModulationOscillator())
	}
}

func TestInvalidPatches(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown waveform", "oscillators:\n  - waveform: pulse\n"},
		{"none oscillator", "oscillators:\n  - waveform: none\n"},
		{"negative gain", "oscillators:\n  - waveform: sine\n    gain: -1\n"},
		{"bad filter type", "filter:\n  type: comb\n  frequency: 100\n  bandwidth: 10\n"},
		{"filter above nyquist", "filter:\n  type: lowpass\n  frequency: 30000\n  bandwidth: 10\n"},
		{"bad sustain", "envelope:\n  sustain: 3\n"},
		{"bad modulation type", "modulation:\n  type: ring\n  waveform: sine\n"},
		{"bad depth", "modulation:\n  waveform: sine\n  depth: 4\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse([]byte(tc.yaml))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, err := p.NewVoice(48000); !errors.Is(err, synthvoice.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	if _, err := Parse([]byte("oscilators:\n  - waveform: sine\n")); err == nil {
		t.Error("expected error for misspelled field")
	}
	p, err := Parse(nil)
	if err != nil || p == nil {
		t.Errorf("empty document: %v", err)
	}
}

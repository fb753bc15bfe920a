// Package preset loads and saves voice patches as YAML.
package preset

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cbegin/synthvoice-go"
)

// Patch is a complete voice configuration. Enum-like fields hold the names
// the voice types print ("sine", "lowpass", "vibrato", ...).
type Patch struct {
	Name        string       `yaml:",omitempty"`
	Frequency   float32      `yaml:",omitempty"`
	Oscillators []Oscillator `yaml:",omitempty"`
	Filter      *Filter      `yaml:",omitempty"`
	Envelope    *Envelope    `yaml:",omitempty"`
	Modulation  *Modulation  `yaml:",omitempty"`
}

type Oscillator struct {
	Waveform string
	// Gain defaults to 1 when omitted.
	Gain   *float32 `yaml:",omitempty"`
	Detune float32  `yaml:",omitempty"`
}

type Filter struct {
	Type      string
	Frequency float32
	Bandwidth float32
}

type Envelope struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

type Modulation struct {
	Type     string `yaml:",omitempty"`
	Waveform string
	Rate     float32 `yaml:",omitempty"`
	// Depth defaults to 1 when omitted.
	Depth *float32 `yaml:",omitempty"`
}

// Parse decodes a patch, rejecting unknown fields.
func Parse(data []byte) (*Patch, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var p Patch
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	return &p, nil
}

func Load(path string) (*Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (p *Patch) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Save writes the patch to path.
func (p *Patch) Save(path string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// resolved is a patch with names parsed and defaults filled in.
type resolved struct {
	sources  []*synthvoice.Oscillator
	freq     float32
	filter   *Filter
	kind     synthvoice.FilterKind
	envelope *synthvoice.EnvelopeParams
	modType  synthvoice.ModulationType
	modWave  synthvoice.Waveform
	modRate  float32
	modDepth float32
}

func (p *Patch) resolve(sampleRate int) (*resolved, error) {
	r := &resolved{freq: p.Frequency, modType: synthvoice.ModulationAmplitude}
	base := p.Frequency
	if base == 0 {
		base = 440
	}
	for i, o := range p.Oscillators {
		w, err := synthvoice.ParseWaveform(o.Waveform)
		if err != nil {
			return nil, fmt.Errorf("%w: oscillator %d: %v", synthvoice.ErrValidation, i, err)
		}
		osc, err := synthvoice.NewOscillator(sampleRate, w, base)
		if err != nil {
			return nil, fmt.Errorf("oscillator %d: %w", i, err)
		}
		if o.Gain != nil {
			if err := osc.SetGain(*o.Gain); err != nil {
				return nil, fmt.Errorf("oscillator %d: %w", i, err)
			}
		}
		if err := osc.SetDetune(o.Detune); err != nil {
			return nil, fmt.Errorf("oscillator %d: %w", i, err)
		}
		r.sources = append(r.sources, osc)
	}
	if len(r.sources) > synthvoice.MaxSources {
		return nil, fmt.Errorf("%w: %d oscillators", synthvoice.ErrCapacity, len(r.sources))
	}
	if p.Filter != nil {
		kind, err := synthvoice.ParseFilterKind(p.Filter.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: filter: %v", synthvoice.ErrValidation, err)
		}
		r.filter, r.kind = p.Filter, kind
	}
	if p.Envelope != nil {
		e := synthvoice.EnvelopeParams{
			Attack:  p.Envelope.Attack,
			Decay:   p.Envelope.Decay,
			Sustain: p.Envelope.Sustain,
			Release: p.Envelope.Release,
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("envelope: %w", err)
		}
		r.envelope = &e
	}
	if m := p.Modulation; m != nil {
		t, err := synthvoice.ParseModulationType(m.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: modulation: %v", synthvoice.ErrValidation, err)
		}
		w, err := synthvoice.ParseWaveform(m.Waveform)
		if err != nil {
			return nil, fmt.Errorf("%w: modulation: %v", synthvoice.ErrValidation, err)
		}
		r.modType, r.modWave, r.modRate, r.modDepth = t, w, m.Rate, 1
		if m.Depth != nil {
			r.modDepth = *m.Depth
		}
	}
	return r, nil
}

// Apply reconfigures v to match the patch using only the voice's public
// mutators. Names and oscillator settings are checked before v is touched;
// stage parameters that v rejects are reported after the preceding ones
// have been applied.
func (p *Patch) Apply(v *synthvoice.Voice) error {
	r, err := p.resolve(int(v.SampleRate()))
	if err != nil {
		return err
	}
	for v.SourceCount() > 0 {
		if _, err := v.RemoveSource(v.SourceCount() - 1); err != nil {
			return err
		}
	}
	if r.freq > 0 {
		if err := v.SetGlobalFrequency(r.freq); err != nil {
			return err
		}
	}
	for _, o := range r.sources {
		if err := v.AppendSource(o); err != nil {
			return err
		}
	}

	if err := v.SetFilter(synthvoice.FilterNone, 0, 0); err != nil {
		return err
	}
	if r.filter != nil && r.kind != synthvoice.FilterNone {
		if err := v.SetFilter(r.kind, r.filter.Frequency, r.filter.Bandwidth); err != nil {
			return fmt.Errorf("filter: %w", err)
		}
	}

	if err := v.SetEnvelope(r.envelope); err != nil {
		return fmt.Errorf("envelope: %w", err)
	}

	if err := v.SetModulationType(r.modType); err != nil {
		return err
	}
	if err := v.SetModulationOscillator(synthvoice.WaveformNone); err != nil {
		return err
	}
	if r.modWave != synthvoice.WaveformNone {
		if err := v.SetModulationOscillator(r.modWave); err != nil {
			return fmt.Errorf("modulation: %w", err)
		}
		if r.modRate != 0 {
			if err := v.SetModulationFrequency(r.modRate); err != nil {
				return fmt.Errorf("modulation: %w", err)
			}
		}
		if err := v.SetModulationDepth(r.modDepth); err != nil {
			return fmt.Errorf("modulation: %w", err)
		}
	}
	return nil
}

// NewVoice builds a voice at sampleRate configured by the patch.
func (p *Patch) NewVoice(sampleRate int) (*synthvoice.Voice, error) {
	v, err := synthvoice.New(sampleRate)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Capture describes v as a patch.
func Capture(v *synthvoice.Voice) *Patch {
	s := v.Snapshot()
	p := &Patch{Frequency: s.Frequency}
	for _, src := range s.Sources {
		gain := src.Gain
		p.Oscillators = append(p.Oscillators, Oscillator{
			Waveform: src.Waveform.String(),
			Gain:     &gain,
			Detune:   src.Detune,
		})
	}
	if f := s.Filter; f != nil {
		p.Filter = &Filter{Type: f.Kind.String(), Frequency: f.Frequency, Bandwidth: f.Bandwidth}
	}
	if e := s.Envelope; e != nil {
		p.Envelope = &Envelope{Attack: e.Attack, Decay: e.Decay, Sustain: e.Sustain, Release: e.Release}
	}
	if m := s.Modulation; m != nil {
		depth := m.Depth
		p.Modulation = &Modulation{
			Type:     m.Type.String(),
			Waveform: m.Waveform.String(),
			Rate:     m.Rate,
			Depth:    &depth,
		}
	} else if s.ModulationType != synthvoice.ModulationAmplitude {
		p.Modulation = &Modulation{Type: s.ModulationType.String(), Waveform: synthvoice.WaveformNone.String()}
	}
	return p
}

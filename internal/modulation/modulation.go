// Package modulation merges tremolo and vibrato behind one stage that owns a
// single sub-oscillator. The type tag decides how the sub-oscillator's sample
// is consumed; switching it never rebuilds the oscillator.
package modulation

import (
	"fmt"
	"strings"

	"github.com/cbegin/synthvoice-go/internal/dsp"
	"github.com/cbegin/synthvoice-go/internal/lfo"
	"github.com/cbegin/synthvoice-go/internal/osc"
	"github.com/cbegin/synthvoice-go/internal/vibrato"
)

type Type int

const (
	TypeAmplitude Type = iota
	TypeVibrato
)

func (t Type) String() string {
	switch t {
	case TypeAmplitude:
		return "amplitude"
	case TypeVibrato:
		return "vibrato"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

func (t Type) Valid() bool { return t == TypeAmplitude || t == TypeVibrato }

func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "amplitude", "am", "tremolo":
		return TypeAmplitude, nil
	case "vibrato", "pitch":
		return TypeVibrato, nil
	}
	return TypeAmplitude, fmt.Errorf("unknown modulation type %q (expected amplitude|vibrato)", s)
}

const (
	DefaultRate  = 5
	DefaultDepth = 1
	// MaxExcursion is the vibrato width at full depth, as a fraction of one
	// sub-oscillator period.
	MaxExcursion = 0.0025
)

// Stage is the modulation slot's state.
type Stage struct {
	sampleRate int
	typ        Type
	sub        *lfo.LFO
	depth      float32
	line       *vibrato.Line
}

// New builds a stage at DefaultRate and DefaultDepth. The delay line is
// allocated up front so a later switch to vibrato allocates nothing.
func New(sampleRate int, typ Type, waveform osc.Waveform) (*Stage, error) {
	if err := dsp.CheckSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: modulation type %v", dsp.ErrValidation, typ)
	}
	if !waveform.Valid() {
		return nil, fmt.Errorf("%w: modulation waveform %v", dsp.ErrValidation, waveform)
	}
	return &Stage{
		sampleRate: sampleRate,
		typ:        typ,
		sub:        lfo.New(sampleRate, DefaultRate, waveform),
		depth:      DefaultDepth,
		line:       vibrato.New(sampleRate),
	}, nil
}

// Process pulls one sub-oscillator sample and applies it to x. The delay
// line is written in both modes so switching to vibrato starts from recent
// audio.
func (s *Stage) Process(x float32) float32 {
	a := s.sub.Sample()
	delayed := s.line.Process(x, s.delayFor(a))
	if s.typ == TypeVibrato {
		return delayed
	}
	// depth 1 reduces to x * (1 + a) / 2.
	return x * (1 - s.depth*(1-a)/2)
}

// delayFor maps a in [-1, 1] to an offset in [0, 2*width].
func (s *Stage) delayFor(a float32) float32 {
	w := s.Width()
	return w * (1 + a)
}

// Width returns the vibrato excursion in samples: depth * MaxExcursion of
// one sub-oscillator period, capped so the full swing fits the delay line.
func (s *Stage) Width() float32 {
	w := s.depth * MaxExcursion * s.sub.Period()
	if limit := s.line.MaxDelay() / 2; w > limit {
		w = limit
	}
	return w
}

// SetType changes only how the sub-oscillator sample is consumed.
func (s *Stage) SetType(t Type) error {
	if !t.Valid() {
		return fmt.Errorf("%w: modulation type %v", dsp.ErrValidation, t)
	}
	s.typ = t
	return nil
}

func (s *Stage) Type() Type { return s.typ }

// SetWaveform replaces the sub-oscillator's shape; phase and rate are kept.
func (s *Stage) SetWaveform(w osc.Waveform) error {
	if !w.Valid() {
		return fmt.Errorf("%w: modulation waveform %v", dsp.ErrValidation, w)
	}
	s.sub.SetWaveform(w)
	return nil
}

func (s *Stage) Waveform() osc.Waveform { return s.sub.Waveform() }

func (s *Stage) SetRate(hz float32) error {
	if err := dsp.CheckFrequency(hz, s.sampleRate); err != nil {
		return fmt.Errorf("modulation rate: %w", err)
	}
	s.sub.SetRate(hz)
	return nil
}

func (s *Stage) Rate() float32 { return s.sub.Rate() }

func (s *Stage) SetDepth(depth float32) error {
	if !dsp.Finite(depth) || depth < 0 || depth > 1 {
		return fmt.Errorf("%w: modulation depth %v outside [0, 1]", dsp.ErrValidation, depth)
	}
	s.depth = depth
	return nil
}

func (s *Stage) Depth() float32 { return s.depth }

// Phase reports the sub-oscillator phase in [0, 1).
func (s *Stage) Phase() float32 { return s.sub.Phase() }

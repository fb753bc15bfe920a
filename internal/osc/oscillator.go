package osc

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/cbegin/synthvoice-go/internal/dsp"
)

// MaxDetune bounds per-source detune in semitones.
const MaxDetune = 48

// Oscillator is a wavetable oscillator. Its effective frequency is the base
// frequency scaled by its detune; gain is applied by the bank when mixing.
type Oscillator struct {
	sampleRate int
	waveform   Waveform
	base       float32
	detune     float32
	ratio      float32
	step       float32
	phase      float32
	gain       float32
}

// New returns an oscillator at unity gain and zero detune.
func New(sampleRate int, waveform Waveform, frequency float32) (*Oscillator, error) {
	if err := dsp.CheckSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if !waveform.Valid() {
		return nil, fmt.Errorf("%w: oscillator waveform %v", dsp.ErrValidation, waveform)
	}
	if err := dsp.CheckFrequency(frequency, sampleRate); err != nil {
		return nil, err
	}
	o := &Oscillator{
		sampleRate: sampleRate,
		waveform:   waveform,
		base:       frequency,
		ratio:      1,
		gain:       1,
	}
	o.updateStep()
	return o, nil
}

func (o *Oscillator) updateStep() {
	o.step = o.base * o.ratio / float32(o.sampleRate)
}

// NextSample returns the raw sample at the current phase and advances one
// sample period. Gain is not applied.
func (o *Oscillator) NextSample() float32 {
	s := Shape(o.waveform, o.phase)
	o.phase += o.step
	if o.phase >= 1 {
		o.phase -= math32.Floor(o.phase)
	}
	return s
}

// SetFrequency sets the base frequency; detune is applied on top. The
// detuned frequency must not exceed Nyquist either.
func (o *Oscillator) SetFrequency(hz float32) error {
	if err := dsp.CheckFrequency(hz, o.sampleRate); err != nil {
		return err
	}
	if err := checkDetuned(hz, o.ratio, o.sampleRate); err != nil {
		return err
	}
	o.base = hz
	o.updateStep()
	return nil
}

// Frequency returns the base frequency.
func (o *Oscillator) Frequency() float32 { return o.base }

// EffectiveFrequency returns the base frequency after detune.
func (o *Oscillator) EffectiveFrequency() float32 { return o.base * o.ratio }

func (o *Oscillator) SetDetune(semitones float32) error {
	if !dsp.Finite(semitones) || semitones < -MaxDetune || semitones > MaxDetune {
		return fmt.Errorf("%w: detune %v semitones outside ±%d", dsp.ErrValidation, semitones, MaxDetune)
	}
	ratio := math32.Pow(2, semitones/12)
	if err := checkDetuned(o.base, ratio, o.sampleRate); err != nil {
		return err
	}
	o.detune = semitones
	o.ratio = ratio
	o.updateStep()
	return nil
}

func checkDetuned(base, ratio float32, sampleRate int) error {
	if hz := base * ratio; hz > dsp.Nyquist(sampleRate) {
		return fmt.Errorf("%w: detuned frequency %v Hz exceeds Nyquist (%v Hz)", dsp.ErrValidation, hz, dsp.Nyquist(sampleRate))
	}
	return nil
}

func (o *Oscillator) Detune() float32 { return o.detune }

func (o *Oscillator) SetGain(gain float32) error {
	if !dsp.Finite(gain) || gain < 0 {
		return fmt.Errorf("%w: gain %v must be non-negative", dsp.ErrValidation, gain)
	}
	o.gain = gain
	return nil
}

func (o *Oscillator) Gain() float32 { return o.gain }

// SetWaveform swaps the table without touching phase or frequency.
func (o *Oscillator) SetWaveform(w Waveform) error {
	if !w.Valid() {
		return fmt.Errorf("%w: oscillator waveform %v", dsp.ErrValidation, w)
	}
	o.waveform = w
	return nil
}

func (o *Oscillator) Waveform() Waveform { return o.waveform }

// Phase returns the normalized phase in [0, 1).
func (o *Oscillator) Phase() float32 { return o.phase }

func (o *Oscillator) SampleRate() int { return o.sampleRate }

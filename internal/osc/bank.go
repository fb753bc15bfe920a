package osc

import (
	"fmt"

	"github.com/cbegin/synthvoice-go/internal/dsp"
)

// MaxSources is the largest number of oscillators a bank will hold.
const MaxSources = 16

// Bank mixes an ordered set of oscillators. The bank may be empty, in which
// case Mix is silent and SetFrequency still records the base frequency for
// sources appended later.
type Bank struct {
	sampleRate int
	sources    []*Oscillator
	base       float32
}

func NewBank(sampleRate int) (*Bank, error) {
	if err := dsp.CheckSampleRate(sampleRate); err != nil {
		return nil, err
	}
	return &Bank{
		sampleRate: sampleRate,
		sources:    make([]*Oscillator, 0, MaxSources),
	}, nil
}

// Mix pulls one sample from every source and returns the gain-weighted sum.
func (b *Bank) Mix() float32 {
	var sum float32
	for _, o := range b.sources {
		sum += o.gain * o.NextSample()
	}
	return sum
}

func (b *Bank) Len() int { return len(b.sources) }

// At returns the source at index without transferring ownership.
func (b *Bank) At(index int) (*Oscillator, error) {
	if err := b.checkIndex(index); err != nil {
		return nil, err
	}
	return b.sources[index], nil
}

// Set replaces the source at index.
func (b *Bank) Set(index int, o *Oscillator) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if b.sources[index] == o {
		return nil
	}
	if err := b.adopt(o); err != nil {
		return err
	}
	b.sources[index] = o
	return nil
}

// Append adds o after the last source.
func (b *Bank) Append(o *Oscillator) error {
	if len(b.sources) >= MaxSources {
		return fmt.Errorf("%w: bank already holds %d sources", dsp.ErrCapacity, MaxSources)
	}
	if err := b.adopt(o); err != nil {
		return err
	}
	b.sources = append(b.sources, o)
	return nil
}

// Remove detaches and returns the source at index. Later sources shift down
// by one and the bank keeps no reference to the returned oscillator.
func (b *Bank) Remove(index int) (*Oscillator, error) {
	if err := b.checkIndex(index); err != nil {
		return nil, err
	}
	o := b.sources[index]
	copy(b.sources[index:], b.sources[index+1:])
	last := len(b.sources) - 1
	b.sources[last] = nil
	b.sources = b.sources[:last]
	return o, nil
}

func (b *Bank) SetGain(index int, gain float32) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	return b.sources[index].SetGain(gain)
}

func (b *Bank) SetDetune(index int, semitones float32) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	return b.sources[index].SetDetune(semitones)
}

// SetFrequency applies one base frequency to every source. Nothing is
// changed when hz, or any source's detuned frequency, is rejected.
func (b *Bank) SetFrequency(hz float32) error {
	if err := dsp.CheckFrequency(hz, b.sampleRate); err != nil {
		return err
	}
	for i, o := range b.sources {
		if err := checkDetuned(hz, o.ratio, b.sampleRate); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
	}
	b.base = hz
	for _, o := range b.sources {
		o.base = hz
		o.updateStep()
	}
	return nil
}

// Frequency returns the last base frequency applied with SetFrequency, or 0.
func (b *Bank) Frequency() float32 { return b.base }

// Clear drops every source.
func (b *Bank) Clear() {
	for i := range b.sources {
		b.sources[i] = nil
	}
	b.sources = b.sources[:0]
}

func (b *Bank) checkIndex(index int) error {
	if index < 0 || index >= len(b.sources) {
		return fmt.Errorf("%w: source %d (bank holds %d)", dsp.ErrIndex, index, len(b.sources))
	}
	return nil
}

// adopt validates o for this bank and aligns it with the bank's base
// frequency.
func (b *Bank) adopt(o *Oscillator) error {
	if o == nil {
		return fmt.Errorf("%w: nil oscillator", dsp.ErrValidation)
	}
	if o.sampleRate != b.sampleRate {
		return fmt.Errorf("%w: oscillator sample rate %d differs from bank %d", dsp.ErrValidation, o.sampleRate, b.sampleRate)
	}
	for _, s := range b.sources {
		if s == o {
			return fmt.Errorf("%w: oscillator already in bank", dsp.ErrValidation)
		}
	}
	if b.base > 0 {
		if err := checkDetuned(b.base, o.ratio, b.sampleRate); err != nil {
			return err
		}
		o.base = b.base
		o.updateStep()
	}
	return nil
}

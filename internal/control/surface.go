// Package control maps computer keyboard and MIDI input onto voice
// reconfiguration calls.
package control

import (
	"github.com/chewxy/math32"

	"github.com/cbegin/synthvoice-go"
)

// Surface is the part of a voice a control surface drives.
// *synthvoice.Voice implements it.
type Surface interface {
	NoteOn(note, velocity uint8) error
	NoteOff()
	SetFilter(kind synthvoice.FilterKind, frequency, bandwidth float32) error
	SetFilterParam(p synthvoice.FilterParam, value float32) error
	SetEnvelope(p *synthvoice.EnvelopeParams) error
	SetEnvelopeParam(p synthvoice.EnvelopeParam, value float32) error
	HasEnvelope() bool
	SetModulationOscillator(w synthvoice.Waveform) error
	SetModulationType(t synthvoice.ModulationType) error
	ModulationType() synthvoice.ModulationType
	SetModulationFrequency(hz float32) error
	SetModulationDepth(depth float32) error
	Snapshot() synthvoice.Snapshot
	SampleRate() uint32
}

var _ Surface = (*synthvoice.Voice)(nil)

// Filter settings used when a control surface switches a filter on.
const (
	DefaultFilterFrequency = 1000
	DefaultFilterBandwidth = 400
)

// expScale maps v in [0, 1] onto [lo, hi] exponentially.
func expScale(v, lo, hi float32) float32 {
	return lo * math32.Pow(hi/lo, v)
}

// filterCeiling keeps filter frequencies clear of Nyquist.
func filterCeiling(sampleRate uint32) float32 {
	return math32.Min(20000, float32(sampleRate)*0.45)
}

package lfo

import (
	"github.com/chewxy/math32"

	"github.com/cbegin/synthvoice-go/internal/osc"
)

// LFO is the low-frequency sub-oscillator owned by a modulation stage. It
// produces one bipolar sample per call in [-1, 1].
type LFO struct {
	sampleRate float32
	rateHz     float32
	waveform   osc.Waveform
	phase      float32 // current phase [0, 1)
}

// New returns an LFO at phase zero. Callers validate rate and waveform.
func New(sampleRate int, rateHz float32, waveform osc.Waveform) *LFO {
	return &LFO{
		sampleRate: float32(sampleRate),
		rateHz:     rateHz,
		waveform:   waveform,
	}
}

// Sample returns the value at the current phase and advances by one sample.
func (l *LFO) Sample() float32 {
	v := osc.Shape(l.waveform, l.phase)
	l.phase += l.rateHz / l.sampleRate
	if l.phase >= 1 {
		l.phase -= math32.Floor(l.phase)
	}
	return v
}

// SetRate changes the oscillation rate without moving the phase.
func (l *LFO) SetRate(hz float32) { l.rateHz = hz }

func (l *LFO) Rate() float32 { return l.rateHz }

// SetWaveform swaps the shape; phase and rate carry over.
func (l *LFO) SetWaveform(w osc.Waveform) { l.waveform = w }

func (l *LFO) Waveform() osc.Waveform { return l.waveform }

func (l *LFO) Phase() float32 { return l.phase }

// Period returns the length of one cycle in samples.
func (l *LFO) Period() float32 {
	if l.rateHz <= 0 {
		return 0
	}
	return l.sampleRate / l.rateHz
}

// Reset zeros the LFO phase.
func (l *LFO) Reset() {
	l.phase = 0
}

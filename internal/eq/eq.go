// Package eq implements the player's master output equalizer.
package eq

import (
	"math"
	"sync/atomic"

	"github.com/chewxy/math32"
)

// Bands is the number of independently adjustable bands.
const Bands = 5

// Crossovers are the band edges in Hz.
var Crossovers = [Bands - 1]float32{200, 800, 2500, 8000}

// Equalizer splits a mono signal with cascaded one-pole lowpass crossovers
// and re-sums the bands with per-band gains. Gains are stored as float32 bit
// patterns so the control side can change them while the audio goroutine
// reads them without a lock.
type Equalizer struct {
	gains  [Bands]atomic.Uint32
	alphas [Bands - 1]float32
	lp     [Bands - 1]float32
}

// New returns an equalizer with every band at unity, which passes the input
// through unchanged.
func New(sampleRate int) *Equalizer {
	eq := &Equalizer{}
	dt := 1 / float32(sampleRate)
	for i, freq := range Crossovers {
		rc := 1 / (2 * math32.Pi * freq)
		eq.alphas[i] = dt / (rc + dt)
	}
	for i := range eq.gains {
		eq.gains[i].Store(math.Float32bits(1))
	}
	return eq
}

// SetGain sets the gain for band (0-4). 1 is unity, 0 silences the band.
// Out-of-range bands and negative or infinite gains are ignored.
func (eq *Equalizer) SetGain(band int, gain float32) {
	if band >= 0 && band < Bands && gain >= 0 && !math32.IsInf(gain, 1) {
		eq.gains[band].Store(math.Float32bits(gain))
	}
}

func (eq *Equalizer) Gain(band int) float32 {
	if band >= 0 && band < Bands {
		return math.Float32frombits(eq.gains[band].Load())
	}
	return 1
}

// Flat reports whether every band is at unity.
func (eq *Equalizer) Flat() bool {
	for i := range eq.gains {
		if eq.Gain(i) != 1 {
			return false
		}
	}
	return true
}

func (eq *Equalizer) Process(x float32) float32 {
	var band [Bands]float32
	rem := x
	for i := range eq.lp {
		eq.lp[i] += eq.alphas[i] * (rem - eq.lp[i])
		band[i] = eq.lp[i]
		rem -= band[i]
	}
	band[Bands-1] = rem

	var out float32
	for i := range band {
		out += band[i] * eq.Gain(i)
	}
	return out
}

// Reset clears the crossover state. Gains are kept.
func (eq *Equalizer) Reset() {
	for i := range eq.lp {
		eq.lp[i] = 0
	}
}

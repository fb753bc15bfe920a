package osc

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// Waveform selects the single-cycle table an oscillator reads from.
type Waveform int

const (
	WaveformNone Waveform = iota
	WaveformSine
	WaveformSaw
	WaveformSquare
	WaveformTriangle
)

const tableSize = 2048

var tables [WaveformTriangle + 1][]float32

func init() {
	for w := WaveformSine; w <= WaveformTriangle; w++ {
		t := make([]float32, tableSize)
		for i := range t {
			t[i] = naiveShape(w, float32(i)/tableSize)
		}
		tables[w] = t
	}
}

// naiveShape evaluates one cycle of w at phase in [0, 1).
func naiveShape(w Waveform, phase float32) float32 {
	switch w {
	case WaveformSaw:
		return 2*phase - 1
	case WaveformSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveformTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default:
		return math32.Sin(2 * math32.Pi * phase)
	}
}

// Shape reads the wavetable of w at phase in [0, 1) with linear
// interpolation. WaveformNone is silent.
func Shape(w Waveform, phase float32) float32 {
	if w <= WaveformNone || w > WaveformTriangle {
		return 0
	}
	t := tables[w]
	pos := phase * tableSize
	idx := math32.Floor(pos)
	frac := pos - idx
	i0 := int(idx) % tableSize
	if i0 < 0 {
		i0 += tableSize
	}
	i1 := (i0 + 1) % tableSize
	return t[i0]*(1-frac) + t[i1]*frac
}

// Valid reports whether w names a playable shape.
func (w Waveform) Valid() bool {
	return w > WaveformNone && w <= WaveformTriangle
}

func (w Waveform) String() string {
	switch w {
	case WaveformNone:
		return "none"
	case WaveformSine:
		return "sine"
	case WaveformSaw:
		return "saw"
	case WaveformSquare:
		return "square"
	case WaveformTriangle:
		return "triangle"
	}
	return fmt.Sprintf("Waveform(%d)", int(w))
}

// ParseWaveform accepts the names produced by String, case-insensitively.
// The empty string parses as WaveformNone.
func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return WaveformNone, nil
	case "sine", "sin":
		return WaveformSine, nil
	case "saw", "sawtooth":
		return WaveformSaw, nil
	case "square", "sqr":
		return WaveformSquare, nil
	case "triangle", "tri":
		return WaveformTriangle, nil
	}
	return WaveformNone, fmt.Errorf("unknown waveform %q (expected sine|saw|square|triangle|none)", s)
}

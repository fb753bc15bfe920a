// Package dsp holds the error kinds and numeric checks shared by every stage
// of a voice.
package dsp

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

var (
	// ErrIndex reports an index outside the current oscillator bank.
	ErrIndex = errors.New("index out of range")
	// ErrCapacity reports an oscillator bank that is already full.
	ErrCapacity = errors.New("capacity exceeded")
	// ErrValidation reports an out-of-range or non-finite parameter.
	ErrValidation = errors.New("invalid value")
)

// Nyquist returns half the sample rate.
func Nyquist(sampleRate int) float32 {
	return float32(sampleRate) / 2
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// CheckFrequency accepts frequencies in (0, Nyquist].
func CheckFrequency(hz float32, sampleRate int) error {
	if !Finite(hz) || hz <= 0 {
		return fmt.Errorf("%w: frequency %v Hz must be positive", ErrValidation, hz)
	}
	if hz > Nyquist(sampleRate) {
		return fmt.Errorf("%w: frequency %v Hz exceeds Nyquist (%v Hz)", ErrValidation, hz, Nyquist(sampleRate))
	}
	return nil
}

// CheckSampleRate rejects non-positive sample rates.
func CheckSampleRate(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d must be positive", ErrValidation, sampleRate)
	}
	return nil
}

// NoteFrequency converts a MIDI note number to Hz (A4 = 440 Hz).
func NoteFrequency(note uint8) float32 {
	return 440 * math32.Pow(2, (float32(note)-69)/12)
}

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

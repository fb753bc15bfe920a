package control

import (
	"fmt"

	"github.com/cbegin/synthvoice-go"
)

// keyNotes maps the home row to the white keys C4 through C5.
var keyNotes = map[rune]uint8{
	'a': 60, 's': 62, 'd': 64, 'f': 65,
	'g': 67, 'h': 69, 'j': 71, 'k': 72,
}

// KeyNote returns the MIDI note for a home-row key.
func KeyNote(r rune) (uint8, bool) {
	n, ok := keyNotes[r]
	return n, ok
}

var filterKeys = map[rune]synthvoice.FilterKind{
	'0': synthvoice.FilterNone,
	'1': synthvoice.FilterLowPass,
	'2': synthvoice.FilterHighPass,
	'3': synthvoice.FilterBandPass,
	'4': synthvoice.FilterNotch,
}

var modulationKeys = map[rune]synthvoice.Waveform{
	'q': synthvoice.WaveformNone,
	'w': synthvoice.WaveformSine,
	'e': synthvoice.WaveformTriangle,
	'r': synthvoice.WaveformSquare,
	't': synthvoice.WaveformSaw,
}

const (
	MinOctave = -3
	MaxOctave = 3
	velocity  = 100
	// filterStep is the ratio applied by the filter frequency keys, a third
	// of an octave.
	filterStep = 1.2599
)

// Keyboard is a computer keyboard control surface:
//
//	a s d f g h j k  play C4..C5 (shifted by the octave)
//	z x              octave down / up
//	space            release the note
//	0 1 2 3 4        filter off / lowpass / highpass / bandpass / notch
//	[ ]              filter frequency down / up
//	q w e r t        modulation off / sine / triangle / square / saw
//	y                toggle amplitude / vibrato modulation
//	v                toggle the envelope
type Keyboard struct {
	s      Surface
	octave int
}

func NewKeyboard(s Surface) *Keyboard {
	return &Keyboard{s: s}
}

func (k *Keyboard) Octave() int { return k.octave }

// Handle applies one key press and describes what it did. Unmapped keys
// return an empty description and no error.
func (k *Keyboard) Handle(r rune) (string, error) {
	if n, ok := KeyNote(r); ok {
		note := int(n) + 12*k.octave
		if err := k.s.NoteOn(uint8(note), velocity); err != nil {
			return "", err
		}
		return fmt.Sprintf("note %d", note), nil
	}
	if kind, ok := filterKeys[r]; ok {
		if err := k.s.SetFilter(kind, DefaultFilterFrequency, DefaultFilterBandwidth); err != nil {
			return "", err
		}
		return "filter " + kind.String(), nil
	}
	if w, ok := modulationKeys[r]; ok {
		if err := k.s.SetModulationOscillator(w); err != nil {
			return "", err
		}
		return "modulation " + w.String(), nil
	}
	switch r {
	case ' ':
		k.s.NoteOff()
		return "release", nil
	case 'z', 'x':
		if r == 'z' && k.octave > MinOctave {
			k.octave--
		}
		if r == 'x' && k.octave < MaxOctave {
			k.octave++
		}
		return fmt.Sprintf("octave %+d", k.octave), nil
	case '[', ']':
		return k.stepFilter(r == ']')
	case 'y':
		t := synthvoice.ModulationVibrato
		if k.s.ModulationType() == synthvoice.ModulationVibrato {
			t = synthvoice.ModulationAmplitude
		}
		if err := k.s.SetModulationType(t); err != nil {
			return "", err
		}
		return "modulation type " + t.String(), nil
	case 'v':
		if k.s.HasEnvelope() {
			return "envelope off", k.s.SetEnvelope(nil)
		}
		p := synthvoice.DefaultEnvelope()
		return "envelope on", k.s.SetEnvelope(&p)
	}
	return "", nil
}

func (k *Keyboard) stepFilter(up bool) (string, error) {
	f := k.s.Snapshot().Filter
	if f == nil {
		return "no filter", nil
	}
	hz := f.Frequency / filterStep
	if up {
		hz = f.Frequency * filterStep
	}
	if limit := filterCeiling(k.s.SampleRate()); hz > limit {
		hz = limit
	}
	if hz < 20 {
		hz = 20
	}
	if err := k.s.SetFilterParam(synthvoice.FilterFrequency, hz); err != nil {
		return "", err
	}
	return fmt.Sprintf("filter %.0f Hz", hz), nil
}

package control

import (
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cbegin/synthvoice-go"
)

// Controller numbers understood by MIDI.
const (
	CCModulationDepth = 1
	CCFilterBandwidth = 71
	CCRelease         = 72
	CCAttack          = 73
	CCFilterFrequency = 74
	CCDecay           = 75
	CCModulationRate  = 76
	CCSustain         = 79
)

// MIDI plays a voice monophonically from note messages and maps a set of
// controllers onto stage parameters. Controllers addressing an absent stage
// are ignored, like the voice's own parameter setters.
type MIDI struct {
	mu      sync.Mutex
	s       Surface
	channel int
	held    []heldKey
	// OnError, when set, receives errors from messages handled through
	// Listen, which has no way to return them.
	OnError func(error)
}

type heldKey struct {
	note, velocity uint8
}

// NewMIDI listens on channel 0-15, or on every channel when channel is
// negative.
func NewMIDI(s Surface, channel int) *MIDI {
	return &MIDI{s: s, channel: channel}
}

// Listen has the signature midi.ListenTo expects.
func (m *MIDI) Listen(msg midi.Message, timestampms int32) {
	if err := m.Handle(msg); err != nil && m.OnError != nil {
		m.OnError(err)
	}
}

// Handle applies one message. Releasing a key that is not the sounding note
// drops it from the held stack; releasing the sounding note falls back to
// the most recent key still held, or releases the voice.
func (m *MIDI) Handle(msg midi.Message) error {
	var ch, key, vel, cc, val uint8
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if !m.accepts(ch) {
			return nil
		}
		if vel == 0 {
			return m.release(key)
		}
		m.drop(key)
		m.held = append(m.held, heldKey{key, vel})
		return m.s.NoteOn(key, vel)
	case msg.GetNoteOff(&ch, &key, &vel):
		if !m.accepts(ch) {
			return nil
		}
		return m.release(key)
	case msg.GetControlChange(&ch, &cc, &val):
		if !m.accepts(ch) {
			return nil
		}
		return m.control(cc, float32(val)/127)
	}
	return nil
}

func (m *MIDI) accepts(ch uint8) bool {
	return m.channel < 0 || int(ch) == m.channel
}

func (m *MIDI) release(key uint8) error {
	if len(m.held) == 0 {
		return nil
	}
	sounding := m.held[len(m.held)-1].note
	m.drop(key)
	if key != sounding {
		return nil
	}
	if len(m.held) == 0 {
		m.s.NoteOff()
		return nil
	}
	top := m.held[len(m.held)-1]
	return m.s.NoteOn(top.note, top.velocity)
}

func (m *MIDI) drop(key uint8) {
	for i, k := range m.held {
		if k.note == key {
			m.held = append(m.held[:i], m.held[i+1:]...)
			return
		}
	}
}

// control applies controller cc at normalized value v in [0, 1].
func (m *MIDI) control(cc uint8, v float32) error {
	switch cc {
	case CCFilterFrequency:
		return m.s.SetFilterParam(synthvoice.FilterFrequency, expScale(v, 20, filterCeiling(m.s.SampleRate())))
	case CCFilterBandwidth:
		return m.s.SetFilterParam(synthvoice.FilterBandwidth, expScale(v, 10, 5000))
	case CCModulationDepth:
		return m.s.SetModulationDepth(v)
	case CCModulationRate:
		return m.s.SetModulationFrequency(expScale(v, 0.1, 20))
	case CCAttack:
		return m.s.SetEnvelopeParam(synthvoice.EnvelopeAttack, segmentTime(v))
	case CCDecay:
		return m.s.SetEnvelopeParam(synthvoice.EnvelopeDecay, segmentTime(v))
	case CCRelease:
		return m.s.SetEnvelopeParam(synthvoice.EnvelopeRelease, segmentTime(v))
	case CCSustain:
		return m.s.SetEnvelopeParam(synthvoice.EnvelopeSustain, v)
	}
	return nil
}

// segmentTime maps a controller to 1 ms .. 10 s; zero is an instant segment.
func segmentTime(v float32) float32 {
	if v == 0 {
		return 0
	}
	return expScale(v, 0.001, 10)
}

package synthvoice

import (
	"fmt"
	"sync"

	"github.com/cbegin/synthvoice-go/internal/dsp"
	"github.com/cbegin/synthvoice-go/internal/envelope"
	"github.com/cbegin/synthvoice-go/internal/filter"
	"github.com/cbegin/synthvoice-go/internal/modulation"
	"github.com/cbegin/synthvoice-go/internal/osc"
)

type (
	Oscillator     = osc.Oscillator
	Waveform       = osc.Waveform
	FilterKind     = filter.Kind
	FilterParam    = filter.Param
	EnvelopeParams = envelope.Params
	EnvelopeParam  = envelope.Param
	EnvelopeStage  = envelope.Stage
	ModulationType = modulation.Type
)

const (
	WaveformNone     = osc.WaveformNone
	WaveformSine     = osc.WaveformSine
	WaveformSaw      = osc.WaveformSaw
	WaveformSquare   = osc.WaveformSquare
	WaveformTriangle = osc.WaveformTriangle

	FilterNone     = filter.KindNone
	FilterLowPass  = filter.KindLowPass
	FilterHighPass = filter.KindHighPass
	FilterBandPass = filter.KindBandPass
	FilterNotch    = filter.KindNotch

	FilterFrequency = filter.ParamFrequency
	FilterBandwidth = filter.ParamBandwidth

	EnvelopeAttack  = envelope.ParamAttack
	EnvelopeDecay   = envelope.ParamDecay
	EnvelopeSustain = envelope.ParamSustain
	EnvelopeRelease = envelope.ParamRelease

	ModulationAmplitude = modulation.TypeAmplitude
	ModulationVibrato   = modulation.TypeVibrato

	MaxSources = osc.MaxSources
)

var (
	ErrIndex      = dsp.ErrIndex
	ErrCapacity   = dsp.ErrCapacity
	ErrValidation = dsp.ErrValidation
)

// NewOscillator builds an oscillator for use with AppendSource or
// SetSource. Its sample rate must match the voice it joins.
func NewOscillator(sampleRate int, w Waveform, hz float32) (*Oscillator, error) {
	return osc.New(sampleRate, w, hz)
}

// ParseWaveform, ParseFilterKind and ParseModulationType accept the names
// their types print, case-insensitively.
func ParseWaveform(s string) (Waveform, error) { return osc.ParseWaveform(s) }

func ParseFilterKind(s string) (FilterKind, error) { return filter.ParseKind(s) }

func ParseModulationType(s string) (ModulationType, error) { return modulation.ParseType(s) }

// DefaultEnvelope returns the envelope parameters used by the command and
// presets when none are given.
func DefaultEnvelope() EnvelopeParams { return envelope.DefaultParams() }

// Option configures a Voice at construction.
type Option func(*voiceConfig)

type voiceConfig struct {
	sources   []sourceSpec
	frequency float32
	filter    *filterSpec
	envelope  *EnvelopeParams
	modWave   Waveform
	modType   ModulationType
}

type sourceSpec struct {
	waveform Waveform
	gain     float32
	detune   float32
}

type filterSpec struct {
	kind      FilterKind
	frequency float32
	bandwidth float32
}

// WithOscillator appends one source with the given gain and detune in
// semitones.
func WithOscillator(w Waveform, gain, detune float32) Option {
	return func(cfg *voiceConfig) {
		cfg.sources = append(cfg.sources, sourceSpec{waveform: w, gain: gain, detune: detune})
	}
}

// WithFrequency sets the initial base frequency of the bank.
func WithFrequency(hz float32) Option {
	return func(cfg *voiceConfig) {
		cfg.frequency = hz
	}
}

func WithFilter(kind FilterKind, frequency, bandwidth float32) Option {
	return func(cfg *voiceConfig) {
		cfg.filter = &filterSpec{kind: kind, frequency: frequency, bandwidth: bandwidth}
	}
}

func WithEnvelope(p EnvelopeParams) Option {
	return func(cfg *voiceConfig) {
		cfg.envelope = &p
	}
}

// WithModulation installs a modulation stage at the default rate and depth.
func WithModulation(t ModulationType, w Waveform) Option {
	return func(cfg *voiceConfig) {
		cfg.modType = t
		cfg.modWave = w
	}
}

// Voice is one synthesizer voice: an oscillator bank followed by optional
// filter, envelope and modulation stages, always run in that order. Every
// method is safe for concurrent use; sample production and reconfiguration
// are serialized by one mutex.
type Voice struct {
	mu         sync.Mutex
	sampleRate int
	bank       *osc.Bank
	filter     *filter.Filter
	env        *envelope.Envelope
	mod        *modulation.Stage
	modType    ModulationType
	velocity   float32
	released   bool // NoteOff seen since the last NoteOn
}

// New builds a voice. Any invalid option fails construction.
func New(sampleRate int, opts ...Option) (*Voice, error) {
	cfg := voiceConfig{modType: ModulationAmplitude}
	for _, opt := range opts {
		opt(&cfg)
	}
	bank, err := osc.NewBank(sampleRate)
	if err != nil {
		return nil, err
	}
	v := &Voice{sampleRate: sampleRate, bank: bank, modType: cfg.modType, velocity: 1}
	if !cfg.modType.Valid() {
		return nil, fmt.Errorf("%w: modulation type %v", ErrValidation, cfg.modType)
	}
	freq := cfg.frequency
	if freq == 0 {
		freq = 440
	}
	if err := bank.SetFrequency(freq); err != nil {
		return nil, fmt.Errorf("initial frequency: %w", err)
	}
	for i, s := range cfg.sources {
		o, err := osc.New(sampleRate, s.waveform, freq)
		if err != nil {
			return nil, fmt.Errorf("oscillator %d: %w", i, err)
		}
		if err := o.SetGain(s.gain); err != nil {
			return nil, fmt.Errorf("oscillator %d: %w", i, err)
		}
		if err := o.SetDetune(s.detune); err != nil {
			return nil, fmt.Errorf("oscillator %d: %w", i, err)
		}
		if err := bank.Append(o); err != nil {
			return nil, fmt.Errorf("oscillator %d: %w", i, err)
		}
	}
	if cfg.filter != nil && cfg.filter.kind != FilterNone {
		if v.filter, err = filter.New(cfg.filter.kind, sampleRate, cfg.filter.frequency, cfg.filter.bandwidth); err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
	}
	if cfg.envelope != nil {
		if v.env, err = envelope.New(sampleRate, *cfg.envelope); err != nil {
			return nil, fmt.Errorf("envelope: %w", err)
		}
	}
	if cfg.modWave != WaveformNone {
		if v.mod, err = modulation.New(sampleRate, cfg.modType, cfg.modWave); err != nil {
			return nil, fmt.Errorf("modulation: %w", err)
		}
	}
	return v, nil
}

// NextSample produces one sample: bank, then filter, envelope and
// modulation, each skipped when its slot is empty.
func (v *Voice) NextSample() float32 {
	v.mu.Lock()
	s := v.next()
	v.mu.Unlock()
	return s
}

// Render fills dst with consecutive samples under one lock acquisition.
func (v *Voice) Render(dst []float32) {
	v.mu.Lock()
	for i := range dst {
		dst[i] = v.next()
	}
	v.mu.Unlock()
}

func (v *Voice) next() float32 {
	s := v.bank.Mix()
	if v.filter != nil {
		s = v.filter.Process(s)
	}
	if v.env != nil {
		s *= v.env.Amplitude()
	}
	if v.mod != nil {
		s = v.mod.Process(s)
	}
	if v.released && v.env == nil {
		return 0
	}
	return s * v.velocity
}

// SampleRate returns the rate shared by every stage of the voice.
func (v *Voice) SampleRate() uint32 { return uint32(v.sampleRate) }

// SetFilter toggles or reconfigures the filter slot. FilterNone removes the
// filter. An empty slot gets a fresh filter built from kind, frequency and
// bandwidth. An occupied slot only changes kind; frequency and bandwidth
// are ignored and the filter memory is kept.
func (v *Voice) SetFilter(kind FilterKind, frequency, bandwidth float32) error {
	if kind == FilterNone {
		v.mu.Lock()
		v.filter = nil
		v.mu.Unlock()
		return nil
	}
	v.mu.Lock()
	if v.filter != nil {
		err := v.filter.ChangeType(kind)
		v.mu.Unlock()
		return err
	}
	v.mu.Unlock()

	f, err := filter.New(kind, v.sampleRate, frequency, bandwidth)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filter != nil {
		// Another caller installed a filter while f was being built.
		return v.filter.ChangeType(kind)
	}
	v.filter = f
	return nil
}

// SetFilterParam updates a filter parameter. It is a no-op without a filter.
func (v *Voice) SetFilterParam(p FilterParam, value float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filter == nil {
		return nil
	}
	return v.filter.SetParam(p, value)
}

// FilterKind reports the installed filter kind, or FilterNone.
func (v *Voice) FilterKind() FilterKind {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filter == nil {
		return FilterNone
	}
	return v.filter.Kind()
}

// SetEnvelope toggles or reconfigures the envelope slot. nil removes the
// envelope, an empty slot gets a fresh envelope in its attack segment and an
// existing envelope takes the new parameters without losing its position.
func (v *Voice) SetEnvelope(p *EnvelopeParams) error {
	if p == nil {
		v.mu.Lock()
		v.env = nil
		v.mu.Unlock()
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	if v.env != nil {
		err := v.env.SetParams(*p)
		v.mu.Unlock()
		return err
	}
	v.mu.Unlock()

	e, err := envelope.New(v.sampleRate, *p)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.env != nil {
		return v.env.SetParams(*p)
	}
	v.env = e
	return nil
}

// SetEnvelopeParam updates one envelope parameter. It is a no-op without an
// envelope.
func (v *Voice) SetEnvelopeParam(p EnvelopeParam, value float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.env == nil {
		return nil
	}
	return v.env.SetParam(p, value)
}

func (v *Voice) HasEnvelope() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.env != nil
}

// SetModulationType selects amplitude or vibrato. The choice is remembered
// when no modulation stage exists and applied in place when one does.
func (v *Voice) SetModulationType(t ModulationType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: modulation type %v", ErrValidation, t)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.modType = t
	if v.mod != nil {
		return v.mod.SetType(t)
	}
	return nil
}

func (v *Voice) ModulationType() ModulationType {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.modType
}

// SetModulationOscillator toggles or reconfigures the modulation slot.
// WaveformNone removes the stage; otherwise an empty slot gets a fresh stage
// at the default rate and depth and an existing stage swaps its waveform.
func (v *Voice) SetModulationOscillator(w Waveform) error {
	if w == WaveformNone {
		v.mu.Lock()
		v.mod = nil
		v.mu.Unlock()
		return nil
	}
	if !w.Valid() {
		return fmt.Errorf("%w: modulation waveform %v", ErrValidation, w)
	}
	v.mu.Lock()
	if v.mod != nil {
		err := v.mod.SetWaveform(w)
		v.mu.Unlock()
		return err
	}
	t := v.modType
	v.mu.Unlock()

	m, err := modulation.New(v.sampleRate, t, w)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mod != nil {
		return v.mod.SetWaveform(w)
	}
	if err := m.SetType(v.modType); err != nil {
		return err
	}
	v.mod = m
	return nil
}

// ModulationOscillator reports the sub-oscillator waveform, or WaveformNone
// when the modulation slot is empty.
func (v *Voice) ModulationOscillator() Waveform {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mod == nil {
		return WaveformNone
	}
	return v.mod.Waveform()
}

// SetModulationFrequency sets the sub-oscillator rate. It is a no-op without
// a modulation stage.
func (v *Voice) SetModulationFrequency(hz float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mod == nil {
		return nil
	}
	return v.mod.SetRate(hz)
}

// SetModulationDepth sets the modulation depth in [0, 1]. It is a no-op
// without a modulation stage.
func (v *Voice) SetModulationDepth(depth float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mod == nil {
		return nil
	}
	return v.mod.SetDepth(depth)
}

// SetSource replaces the oscillator at index.
func (v *Voice) SetSource(index int, o *Oscillator) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bank.Set(index, o)
}

// AppendSource adds o to the end of the bank. The bank's base frequency, if
// set, is applied to o.
func (v *Voice) AppendSource(o *Oscillator) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bank.Append(o)
}

// RemoveSource detaches the oscillator at index and hands it to the caller.
// The voice keeps no reference to it.
func (v *Voice) RemoveSource(index int) (*Oscillator, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bank.Remove(index)
}

func (v *Voice) SetSourceGain(index int, gain float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bank.SetGain(index, gain)
}

func (v *Voice) SetSourceDetune(index int, semitones float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bank.SetDetune(index, semitones)
}

// SetGlobalFrequency sets the base frequency of every source. It must lie in
// (0, SampleRate/2].
func (v *Voice) SetGlobalFrequency(hz float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bank.SetFrequency(hz)
}

func (v *Voice) GlobalFrequency() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bank.Frequency()
}

func (v *Voice) SourceCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bank.Len()
}

// NoteOn tunes the bank to a MIDI note and retriggers the envelope.
// Velocity scales the output linearly; velocity 0 is a NoteOff.
func (v *Voice) NoteOn(note, velocity uint8) error {
	if velocity == 0 {
		v.NoteOff()
		return nil
	}
	if note > 127 || velocity > 127 {
		return fmt.Errorf("%w: note %d velocity %d outside MIDI range", ErrValidation, note, velocity)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.bank.SetFrequency(dsp.NoteFrequency(note)); err != nil {
		return err
	}
	v.velocity = float32(velocity) / 127
	v.released = false
	if v.env != nil {
		v.env.Trigger()
	}
	return nil
}

// NoteOff starts the envelope release. Without an envelope the voice is
// muted until the next NoteOn.
func (v *Voice) NoteOff() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.released = true
	if v.env != nil {
		v.env.Release()
	}
}

// EnvelopeStage reports the envelope segment, or StageIdle without an
// envelope.
func (v *Voice) EnvelopeStage() EnvelopeStage {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.env == nil {
		return envelope.StageIdle
	}
	return v.env.Stage()
}

// Close empties every slot and the bank. A closed voice stays usable and
// produces silence.
func (v *Voice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bank.Clear()
	v.filter = nil
	v.env = nil
	v.mod = nil
	return nil
}

package synthvoice

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	intaudio "github.com/cbegin/synthvoice-go/internal/audio"
	inteq "github.com/cbegin/synthvoice-go/internal/eq"
)

type Backend = intaudio.Backend

const (
	BackendEbiten = intaudio.BackendEbiten
	BackendOto    = intaudio.BackendOto
)

// ParseBackend accepts "ebiten" (also the empty string) or "oto".
func ParseBackend(s string) (Backend, error) { return intaudio.ParseBackend(s) }

type PlayerOption func(*playerConfig)

type playerConfig struct {
	backend   Backend
	sampleTap func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{backend: BackendEbiten}
}

func WithBackend(b Backend) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = b
	}
}

// WithSampleTap installs a callback invoked with each generated mono buffer
// after master volume and EQ. The callback runs on the audio thread; keep
// work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player streams a voice to the sound device. The voice stays fully
// controllable while it plays.
type Player struct {
	mu        sync.Mutex
	voice     *Voice
	backend   Backend
	audio     *intaudio.Player
	volume    atomic.Uint64 // float64 bits
	masterEQ  *inteq.Equalizer
	sampleTap func([]float32)
}

// voiceSource adapts a Voice to the device stream, applying the player's
// master stage.
type voiceSource struct {
	voice *Voice
	p     *Player
}

func (s voiceSource) Render(dst []float32) {
	s.voice.Render(dst)
	s.p.master(dst)
}

func NewPlayer(v *Voice, opts ...PlayerOption) (*Player, error) {
	if v == nil {
		return nil, errors.New("voice must not be nil")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := intaudio.ParseBackend(string(cfg.backend)); err != nil {
		return nil, err
	}
	p := &Player{
		voice:     v,
		backend:   cfg.backend,
		masterEQ:  inteq.New(int(v.SampleRate())),
		sampleTap: cfg.sampleTap,
	}
	p.volume.Store(math.Float64bits(1))
	return p, nil
}

// master applies volume and EQ in place and feeds the sample tap.
func (p *Player) master(buf []float32) {
	vol := float32(math.Float64frombits(p.volume.Load()))
	flat := p.masterEQ.Flat()
	for i, s := range buf {
		if !flat {
			s = p.masterEQ.Process(s)
		}
		buf[i] = s * vol
	}
	if p.sampleTap != nil {
		p.sampleTap(buf)
	}
}

// Play opens the device stream on first use and starts or resumes it.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		backend, err := intaudio.NewPlayer(p.backend, int(p.voice.SampleRate()), voiceSource{voice: p.voice, p: p})
		if err != nil {
			return err
		}
		p.audio = backend
	}
	p.audio.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio != nil && p.audio.IsPlaying()
}

// Stop closes the device stream and clears the master EQ state. A later
// Play opens a new stream.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.audio != nil {
		err = p.audio.Stop()
		p.audio = nil
	}
	p.masterEQ.Reset()
	return err
}

// PlaybackPosition returns the current output position of the audio driver
// in samples, i.e. what the listener actually hears right now. Returns 0 if
// not playing or if the backend cannot report it.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return int64(a.Position().Seconds() * float64(p.voice.SampleRate()))
}

// SetMasterVolume sets runtime volume scalar. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 || math.IsNaN(volume) {
		volume = 0
	}
	p.volume.Store(math.Float64bits(volume))
}

func (p *Player) MasterVolume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// SetEQBand sets the gain for a master EQ band (0-4). 1.0 = unity.
// Band frequencies: 0=<200Hz, 1=200-800Hz, 2=800-2.5kHz, 3=2.5-8kHz, 4=>8kHz.
// This takes effect immediately on the audio thread (lock-free).
func (p *Player) SetEQBand(band int, gain float32) {
	p.masterEQ.SetGain(band, gain)
}

// EQBand returns the current gain for a master EQ band (0-4).
func (p *Player) EQBand(band int) float32 {
	return p.masterEQ.Gain(band)
}

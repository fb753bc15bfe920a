package audio

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Backend names a device output implementation. Only one backend may be
// used per process: each owns the process-wide audio context of its
// library.
type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendOto    Backend = "oto"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendEbiten:
		return BackendEbiten, nil
	case BackendOto:
		return BackendOto, nil
	}
	return "", fmt.Errorf("unknown audio backend %q (expected ebiten|oto)", s)
}

// output is the subset of a device player both backends provide.
type output interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

type Player struct {
	out      output
	reader   io.ReadCloser
	position func() time.Duration
}

// NewPlayer opens a device stream on backend that pulls from source.
func NewPlayer(backend Backend, sampleRate int, source SampleSource) (*Player, error) {
	reader := NewStreamReader(source)
	switch backend {
	case BackendEbiten, "":
		pl, err := newEbitenPlayer(sampleRate, reader)
		if err != nil {
			return nil, err
		}
		return &Player{out: pl, reader: reader, position: pl.Position}, nil
	case BackendOto:
		pl, err := newOtoPlayer(sampleRate, reader)
		if err != nil {
			return nil, err
		}
		return &Player{out: pl, reader: reader}, nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", backend)
}

func (p *Player) Play()  { p.out.Play() }
func (p *Player) Pause() { p.out.Pause() }
func (p *Player) IsPlaying() bool {
	return p.out.IsPlaying()
}

// Position returns the current playback position (what the listener actually
// hears). Backends that cannot report it return 0.
func (p *Player) Position() time.Duration {
	if p.position == nil {
		return 0
	}
	return p.position()
}

func (p *Player) Stop() error {
	p.out.Pause()
	if err := p.out.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}

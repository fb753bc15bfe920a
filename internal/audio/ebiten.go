package audio

import (
	"fmt"
	"io"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

type ebitenPlayer struct {
	*ebitaudio.Player
}

func newEbitenPlayer(sampleRate int, r io.Reader) (*ebitenPlayer, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := ctx.NewPlayerF32(r)
	if err != nil {
		return nil, err
	}
	return &ebitenPlayer{Player: pl}, nil
}

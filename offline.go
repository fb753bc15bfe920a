package synthvoice

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/synthvoice-go/internal/dsp"
)

// RenderSamples runs v for the given duration and returns the mono output.
func RenderSamples(v *Voice, seconds float64) []float32 {
	frames := int(float64(v.SampleRate()) * seconds)
	if frames <= 0 {
		return nil
	}
	out := make([]float32, frames)
	v.Render(out)
	return out
}

const wavBitDepth = 16

// WriteWAV encodes mono samples as 16-bit PCM. Samples outside [-1, 1] are
// clipped.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d must be positive", ErrValidation, sampleRate)
	}
	const full = 1<<(wavBitDepth-1) - 1
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(dsp.Clamp(s, -1, 1) * full)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, 1, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}

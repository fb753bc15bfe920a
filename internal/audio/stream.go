// Package audio streams mono voice output to a sound device.
package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// SampleSource fills dst with consecutive mono samples.
type SampleSource interface {
	Render(dst []float32)
}

// StreamReader turns a mono SampleSource into interleaved stereo 32-bit
// float little-endian PCM, the format both device backends consume.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([]float32, frames)
	}
	r.buf = r.buf[:frames]
	r.source.Render(r.buf)
	for i, s := range r.buf {
		u := math.Float32bits(s)
		binary.LittleEndian.PutUint32(p[i*8:], u)
		binary.LittleEndian.PutUint32(p[i*8+4:], u)
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

// Package vibrato provides the fractional delay line behind pitch
// modulation.
package vibrato

// MaxDelaySec is the longest delay a line can produce.
const MaxDelaySec = 0.02

// Line is a circular buffer read at a fractional offset behind the write
// head. Offsets are clamped to the buffer so reads never run past data that
// has been written.
type Line struct {
	buf []float32
	pos int
}

// New sizes a line for MaxDelaySec at sampleRate.
func New(sampleRate int) *Line {
	size := int(MaxDelaySec*float64(sampleRate)) + 2
	if size < 4 {
		size = 4
	}
	return &Line{buf: make([]float32, size)}
}

// MaxDelay returns the largest usable offset in samples.
func (l *Line) MaxDelay() float32 {
	return float32(len(l.buf) - 2)
}

// Process writes x and returns the sample delay samples behind it, linearly
// interpolated.
func (l *Line) Process(x float32, delay float32) float32 {
	l.buf[l.pos] = x
	if delay < 0 {
		delay = 0
	}
	if limit := l.MaxDelay(); delay > limit {
		delay = limit
	}
	size := len(l.buf)
	readPos := float32(l.pos) - delay
	for readPos < 0 {
		readPos += float32(size)
	}
	idx := int(readPos)
	frac := readPos - float32(idx)
	if idx >= size {
		idx -= size
	}
	idx2 := idx + 1
	if idx2 >= size {
		idx2 = 0
	}
	out := l.buf[idx]*(1-frac) + l.buf[idx2]*frac

	l.pos++
	if l.pos >= size {
		l.pos = 0
	}
	return out
}

// Reset clears the buffer.
func (l *Line) Reset() {
	for i := range l.buf {
		l.buf[i] = 0
	}
	l.pos = 0
}

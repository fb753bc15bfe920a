// Package filter implements the voice's optional filter stage as a biquad
// whose response kind can be changed without clearing its memory.
package filter

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/cbegin/synthvoice-go/internal/dsp"
)

type Kind int

const (
	KindNone Kind = iota
	KindLowPass
	KindHighPass
	KindBandPass
	KindNotch
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindLowPass:
		return "lowpass"
	case KindHighPass:
		return "highpass"
	case KindBandPass:
		return "bandpass"
	case KindNotch:
		return "notch"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return KindNone, nil
	case "lowpass", "lp", "lpf":
		return KindLowPass, nil
	case "highpass", "hp", "hpf":
		return KindHighPass, nil
	case "bandpass", "bp", "bpf":
		return KindBandPass, nil
	case "notch", "bandstop":
		return KindNotch, nil
	}
	return KindNone, fmt.Errorf("unknown filter type %q (expected lowpass|highpass|bandpass|notch|none)", s)
}

// Param names a filter parameter addressable by SetParam.
type Param int

const (
	ParamFrequency Param = iota // cutoff or centre frequency, Hz
	ParamBandwidth              // bandwidth, Hz
)

func (p Param) String() string {
	switch p {
	case ParamFrequency:
		return "frequency"
	case ParamBandwidth:
		return "bandwidth"
	}
	return fmt.Sprintf("Param(%d)", int(p))
}

// Filter is a direct form I biquad (RBJ cookbook coefficients).
type Filter struct {
	kind       Kind
	sampleRate int
	freq       float32
	bandwidth  float32

	b0, b1, b2 float32
	a1, a2     float32

	x1, x2 float32
	y1, y2 float32
}

// New builds a filter with cleared memory.
func New(kind Kind, sampleRate int, freq, bandwidth float32) (*Filter, error) {
	if err := dsp.CheckSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if err := checkFreq(freq, sampleRate); err != nil {
		return nil, err
	}
	if err := checkBandwidth(bandwidth, sampleRate); err != nil {
		return nil, err
	}
	f := &Filter{kind: kind, sampleRate: sampleRate, freq: freq, bandwidth: bandwidth}
	f.design()
	return f, nil
}

func checkKind(kind Kind) error {
	if kind <= KindNone || kind > KindNotch {
		return fmt.Errorf("%w: filter type %v", dsp.ErrValidation, kind)
	}
	return nil
}

// checkFreq keeps the cutoff strictly below Nyquist, where the biquad
// design degenerates.
func checkFreq(hz float32, sampleRate int) error {
	if err := dsp.CheckFrequency(hz, sampleRate); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if hz >= dsp.Nyquist(sampleRate) {
		return fmt.Errorf("%w: filter frequency %v Hz must be below Nyquist", dsp.ErrValidation, hz)
	}
	return nil
}

func checkBandwidth(hz float32, sampleRate int) error {
	if !dsp.Finite(hz) || hz <= 0 || hz > dsp.Nyquist(sampleRate) {
		return fmt.Errorf("%w: filter bandwidth %v Hz outside (0, %v]", dsp.ErrValidation, hz, dsp.Nyquist(sampleRate))
	}
	return nil
}

// design recomputes coefficients from kind, frequency and bandwidth. The
// delay elements are left untouched.
func (f *Filter) design() {
	w0 := 2 * math32.Pi * f.freq / float32(f.sampleRate)
	cosw, sinw := math32.Cos(w0), math32.Sin(w0)
	q := f.freq / f.bandwidth
	alpha := sinw / (2 * q)
	a0 := 1 + alpha
	var b0, b1, b2 float32
	switch f.kind {
	case KindHighPass:
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = (1 + cosw) / 2
	case KindBandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	case KindNotch:
		b0 = 1
		b1 = -2 * cosw
		b2 = 1
	default:
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = (1 - cosw) / 2
	}
	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha) / a0
}

// Process filters one sample.
func (f *Filter) Process(x float32) float32 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// ChangeType switches the response kind in place. Sample rate, frequency,
// bandwidth and the delay elements are kept; an unchanged kind is a no-op.
func (f *Filter) ChangeType(kind Kind) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if kind == f.kind {
		return nil
	}
	f.kind = kind
	f.design()
	return nil
}

// SetParam updates one parameter and recomputes coefficients.
func (f *Filter) SetParam(p Param, value float32) error {
	switch p {
	case ParamFrequency:
		if err := checkFreq(value, f.sampleRate); err != nil {
			return err
		}
		f.freq = value
	case ParamBandwidth:
		if err := checkBandwidth(value, f.sampleRate); err != nil {
			return err
		}
		f.bandwidth = value
	default:
		return fmt.Errorf("%w: unknown filter parameter %v", dsp.ErrValidation, p)
	}
	f.design()
	return nil
}

func (f *Filter) Kind() Kind         { return f.kind }
func (f *Filter) Frequency() float32 { return f.freq }
func (f *Filter) Bandwidth() float32 { return f.bandwidth }
func (f *Filter) SampleRate() int    { return f.sampleRate }

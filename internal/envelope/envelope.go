package envelope

import (
	"fmt"

	"github.com/cbegin/synthvoice-go/internal/dsp"
)

// MaxSegment bounds attack, decay and release times in seconds.
const MaxSegment = 60

type Stage int

const (
	StageAttack Stage = iota
	StageDecay
	StageSustain
	StageRelease
	StageIdle
)

func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	case StageIdle:
		return "idle"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

type Param int

const (
	ParamAttack Param = iota
	ParamDecay
	ParamSustain
	ParamRelease
)

func (p Param) String() string {
	switch p {
	case ParamAttack:
		return "attack"
	case ParamDecay:
		return "decay"
	case ParamSustain:
		return "sustain"
	case ParamRelease:
		return "release"
	}
	return fmt.Sprintf("Param(%d)", int(p))
}

// Params holds segment times in seconds and the sustain level in [0, 1].
type Params struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

func DefaultParams() Params {
	return Params{
		Attack:  0.005,
		Decay:   0.12,
		Sustain: 0.75,
		Release: 0.2,
	}
}

func (p Params) Validate() error {
	for _, seg := range []struct {
		name string
		v    float32
	}{{"attack", p.Attack}, {"decay", p.Decay}, {"release", p.Release}} {
		if !dsp.Finite(seg.v) || seg.v < 0 || seg.v > MaxSegment {
			return fmt.Errorf("%w: %s %v s outside [0, %d]", dsp.ErrValidation, seg.name, seg.v, MaxSegment)
		}
	}
	if !dsp.Finite(p.Sustain) || p.Sustain < 0 || p.Sustain > 1 {
		return fmt.Errorf("%w: sustain level %v outside [0, 1]", dsp.ErrValidation, p.Sustain)
	}
	return nil
}

// Envelope is a linear-segment ADSR. A new envelope starts in its attack
// segment; Trigger restarts attack from the current level and Release moves
// to the release segment. Each segment lasts round(seconds*sampleRate)
// samples, at least one.
type Envelope struct {
	sampleRate float32
	params     Params
	stage      Stage
	level      float32
	from       float32 // level when the current segment started
	pos        int     // samples into the current segment
	elapsed    int
}

func New(sampleRate int, p Params) (*Envelope, error) {
	if err := dsp.CheckSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Envelope{sampleRate: float32(sampleRate), params: p}, nil
}

// Amplitude advances the envelope by one sample and returns its level.
func (e *Envelope) Amplitude() float32 {
	e.elapsed++
	switch e.stage {
	case StageAttack:
		if e.advance(1, e.params.Attack) {
			e.enter(StageDecay)
		}
	case StageDecay:
		if e.advance(e.params.Sustain, e.params.Decay) {
			e.enter(StageSustain)
		}
	case StageSustain:
		e.level = e.params.Sustain
	case StageRelease:
		if e.advance(0, e.params.Release) {
			e.enter(StageIdle)
		}
	case StageIdle:
		e.level = 0
	}
	return e.level
}

// advance moves one sample along the segment from e.from to target and
// reports whether the segment is complete.
func (e *Envelope) advance(target, seconds float32) bool {
	e.pos++
	total := e.samples(seconds)
	if e.pos >= total {
		e.level = target
		return true
	}
	e.level = e.from + (target-e.from)*float32(e.pos)/float32(total)
	return false
}

func (e *Envelope) samples(seconds float32) int {
	n := int(seconds*e.sampleRate + 0.5)
	if n < 1 {
		return 1
	}
	return n
}

func (e *Envelope) enter(s Stage) {
	e.stage = s
	e.from = e.level
	e.pos = 0
}

// Trigger restarts the attack segment from the current level.
func (e *Envelope) Trigger() {
	e.enter(StageAttack)
	e.elapsed = 0
}

// Release starts the release segment from the current level unless the
// envelope is idle.
func (e *Envelope) Release() {
	if e.stage != StageIdle {
		e.enter(StageRelease)
	}
}

// SetParam changes one parameter in place. Stage, level and elapsed time are
// preserved.
func (e *Envelope) SetParam(p Param, value float32) error {
	next := e.params
	switch p {
	case ParamAttack:
		next.Attack = value
	case ParamDecay:
		next.Decay = value
	case ParamSustain:
		next.Sustain = value
	case ParamRelease:
		next.Release = value
	default:
		return fmt.Errorf("%w: unknown envelope parameter %v", dsp.ErrValidation, p)
	}
	return e.SetParams(next)
}

// SetParams replaces every parameter in place.
func (e *Envelope) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.params = p
	return nil
}

func (e *Envelope) Params() Params { return e.params }
func (e *Envelope) Stage() Stage   { return e.stage }
func (e *Envelope) Level() float32 { return e.level }

// Elapsed returns the number of samples since the last Trigger.
func (e *Envelope) Elapsed() int { return e.elapsed }

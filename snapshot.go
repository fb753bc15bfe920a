package synthvoice

// Snapshot is a copy of a voice's topology and parameters. It shares no
// state with the voice.
type Snapshot struct {
	SampleRate     uint32
	Frequency      float32
	Sources        []SourceInfo
	Filter         *FilterInfo
	Envelope       *EnvelopeParams
	Modulation     *ModulationInfo
	ModulationType ModulationType
}

type SourceInfo struct {
	Waveform Waveform
	Gain     float32
	Detune   float32
}

type FilterInfo struct {
	Kind      FilterKind
	Frequency float32
	Bandwidth float32
}

type ModulationInfo struct {
	Type     ModulationType
	Waveform Waveform
	Rate     float32
	Depth    float32
}

// Snapshot describes the voice as it is between two samples.
func (v *Voice) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := Snapshot{
		SampleRate:     uint32(v.sampleRate),
		Frequency:      v.bank.Frequency(),
		Sources:        make([]SourceInfo, 0, v.bank.Len()),
		ModulationType: v.modType,
	}
	for i := 0; i < v.bank.Len(); i++ {
		o, _ := v.bank.At(i)
		s.Sources = append(s.Sources, SourceInfo{Waveform: o.Waveform(), Gain: o.Gain(), Detune: o.Detune()})
	}
	if v.filter != nil {
		s.Filter = &FilterInfo{Kind: v.filter.Kind(), Frequency: v.filter.Frequency(), Bandwidth: v.filter.Bandwidth()}
	}
	if v.env != nil {
		p := v.env.Params()
		s.Envelope = &p
	}
	if v.mod != nil {
		s.Modulation = &ModulationInfo{
			Type:     v.mod.Type(),
			Waveform: v.mod.Waveform(),
			Rate:     v.mod.Rate(),
			Depth:    v.mod.Depth(),
		}
	}
	return s
}

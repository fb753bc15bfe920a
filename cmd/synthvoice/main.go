package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/cbegin/synthvoice-go"
	"github.com/cbegin/synthvoice-go/internal/control"
	"github.com/cbegin/synthvoice-go/internal/meter"
	"github.com/cbegin/synthvoice-go/internal/preset"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		patchPath  = flag.String("patch", "", "path to a YAML voice patch")
		backend    = flag.String("backend", "ebiten", "audio backend: ebiten|oto")
		renderPath = flag.String("render", "", "render to this WAV file instead of playing")
		seconds    = flag.Float64("seconds", 2, "note length for -render and plain playback")
		note       = flag.Int("note", 69, "MIDI note played by -render and plain playback")
		keys       = flag.Bool("keys", false, "play the voice from the computer keyboard")
		midiPrefix = flag.String("midi", "", "play the voice from the first MIDI input whose name starts with this prefix")
		midiChan   = flag.Int("midi-channel", -1, "MIDI channel 0-15 (-1 = all)")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
	)
	flag.Parse()

	if *note < 0 || *note > 127 {
		log.Fatalf("invalid -note %d (expected 0-127)", *note)
	}
	v, err := buildVoice(*patchPath, *sampleRate)
	if err != nil {
		log.Fatal(err)
	}

	if *renderPath != "" {
		if err := renderToFile(v, *renderPath, uint8(*note), *seconds); err != nil {
			log.Fatal(err)
		}
		return
	}

	be, err := synthvoice.ParseBackend(*backend)
	if err != nil {
		log.Fatal(err)
	}
	pl, err := synthvoice.NewPlayer(v, synthvoice.WithBackend(be))
	if err != nil {
		log.Fatal(err)
	}
	pl.SetMasterVolume(*volume)
	if err := pl.Play(); err != nil {
		log.Fatal(err)
	}
	defer pl.Stop()

	if *midiPrefix != "" {
		m := control.NewMIDI(v, *midiChan)
		m.OnError = func(err error) { log.Printf("midi: %v", err) }
		closeMIDI, err := openMIDI(*midiPrefix, m)
		if err != nil {
			log.Fatal(err)
		}
		defer closeMIDI()
		if !*keys {
			fmt.Println("listening for MIDI; press Ctrl-C to quit")
			waitForInterrupt()
			return
		}
	}
	if *keys {
		if err := runKeyboard(v); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := v.NoteOn(uint8(*note), 100); err != nil {
		log.Fatal(err)
	}
	time.Sleep(time.Duration(*seconds * float64(time.Second)))
	v.NoteOff()
	if env := v.Snapshot().Envelope; env != nil {
		time.Sleep(time.Duration(env.Release * float32(time.Second)))
	}
}

func buildVoice(patchPath string, sampleRate int) (*synthvoice.Voice, error) {
	if patchPath != "" {
		p, err := preset.Load(patchPath)
		if err != nil {
			return nil, err
		}
		return p.NewVoice(sampleRate)
	}
	return synthvoice.New(sampleRate,
		synthvoice.WithOscillator(synthvoice.WaveformSaw, 0.35, 0),
		synthvoice.WithOscillator(synthvoice.WaveformSquare, 0.2, -12.07),
		synthvoice.WithFilter(synthvoice.FilterLowPass, control.DefaultFilterFrequency*2, control.DefaultFilterBandwidth),
		synthvoice.WithEnvelope(synthvoice.DefaultEnvelope()),
	)
}

// renderToFile plays note for seconds, then renders the envelope release.
func renderToFile(v *synthvoice.Voice, path string, note uint8, seconds float64) error {
	if err := v.NoteOn(note, 100); err != nil {
		return err
	}
	samples := synthvoice.RenderSamples(v, seconds)
	v.NoteOff()
	if env := v.Snapshot().Envelope; env != nil {
		samples = append(samples, synthvoice.RenderSamples(v, float64(env.Release))...)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := synthvoice.WriteWAV(f, samples, int(v.SampleRate())); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %.2fs, peak %.1f dBFS, rms %.1f dBFS\n", path,
		float64(len(samples))/float64(v.SampleRate()),
		meter.DBFS(meter.Peak(samples)), meter.DBFS(meter.RMS(samples)))
	return nil
}

func waitForInterrupt() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	<-ch
}

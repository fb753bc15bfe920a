//go:build cgo

package main

import (
	"fmt"
	"log"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cbegin/synthvoice-go/internal/control"
)

// openMIDI connects the first input whose name starts with prefix to m and
// returns a function that disconnects it.
func openMIDI(prefix string, m *control.MIDI) (func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("open MIDI driver: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, err
	}
	for _, in := range ins {
		if !strings.HasPrefix(in.String(), prefix) {
			continue
		}
		if err := in.Open(); err != nil {
			drv.Close()
			return nil, fmt.Errorf("opening MIDI input failed: %w", err)
		}
		stop, err := midi.ListenTo(in, m.Listen)
		if err != nil {
			in.Close()
			drv.Close()
			return nil, err
		}
		log.Printf("midi: listening on %s", in)
		return func() {
			stop()
			in.Close()
			drv.Close()
		}, nil
	}
	drv.Close()
	return nil, fmt.Errorf("no MIDI input starting with %q", prefix)
}

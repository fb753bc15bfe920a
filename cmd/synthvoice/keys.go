package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/cbegin/synthvoice-go"
	"github.com/cbegin/synthvoice-go/internal/control"
)

const keyHelp = "a-k play  z/x octave  space release  0-4 filter  [ ] cutoff  q-t modulation  y am/vibrato  v envelope  esc quit"

// runKeyboard reads single key presses from a raw terminal until Esc or
// Ctrl-C.
func runKeyboard(v *synthvoice.Voice) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("-keys needs an interactive terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, old)

	kb := control.NewKeyboard(v)
	fmt.Print(keyHelp + "\r\n")
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return err
		}
		switch buf[0] {
		case 27, 3:
			v.NoteOff()
			return nil
		}
		desc, err := kb.Handle(rune(buf[0]))
		if err != nil {
			fmt.Printf("\r\x1b[K%v", err)
			continue
		}
		if desc != "" {
			fmt.Printf("\r\x1b[K%-20s %s", desc, status(v.Snapshot()))
		}
	}
}

func status(s synthvoice.Snapshot) string {
	out := fmt.Sprintf("%.1f Hz, %d osc", s.Frequency, len(s.Sources))
	if s.Filter != nil {
		out += fmt.Sprintf(", %s %.0f Hz", s.Filter.Kind, s.Filter.Frequency)
	}
	if s.Envelope != nil {
		out += ", env"
	}
	if s.Modulation != nil {
		out += fmt.Sprintf(", %s %s %.1f Hz", s.Modulation.Type, s.Modulation.Waveform, s.Modulation.Rate)
	}
	return out
}

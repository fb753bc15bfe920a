//go:build !cgo

package main

import (
	"errors"

	"github.com/cbegin/synthvoice-go/internal/control"
)

func openMIDI(string, *control.MIDI) (func(), error) {
	return nil, errors.New("MIDI input needs a cgo build")
}

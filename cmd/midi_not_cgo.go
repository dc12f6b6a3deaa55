//go:build !cgo

package cmd

import (
	"errors"

	"github.com/chroniclehub/ligature/tracker/gomidi"
)

// OpenMIDIOut fails: with no cgo, there is no MIDI driver.
func OpenMIDIOut(namePrefix string) (gomidi.Sender, func(), error) {
	return nil, func() {}, errors.New("MIDI output is not available: built without cgo")
}

func MIDIOutputs() []string { return nil }

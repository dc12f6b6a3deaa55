//go:build cgo

package cmd

import (
	"github.com/chroniclehub/ligature/tracker/gomidi"
)

// OpenMIDIOut opens the first MIDI output port whose name starts with
// namePrefix. The returned func closes the driver.
func OpenMIDIOut(namePrefix string) (gomidi.Sender, func(), error) {
	c := gomidi.NewContext()
	out, err := c.Open(namePrefix)
	if err != nil {
		c.Close()
		return nil, func() {}, err
	}
	return out, c.Close, nil
}

// MIDIOutputs returns the names of the MIDI output ports.
func MIDIOutputs() []string {
	c := gomidi.NewContext()
	defer c.Close()
	var ret []string
	for name := range c.Outputs {
		ret = append(ret, name)
	}
	return ret
}

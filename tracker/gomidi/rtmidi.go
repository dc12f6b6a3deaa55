//go:build cgo

package gomidi

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// RTMIDIContext owns the rtmidi driver and the output port the player sends
// to.
type RTMIDIContext struct {
	driver     *rtmididrv.Driver
	currentOut drivers.Out
}

// NewContext opens the driver.
func NewContext() *RTMIDIContext {
	m := RTMIDIContext{}
	// there's not much we can do if this fails, so just use m.driver = nil to
	// indicate no driver available
	m.driver, _ = rtmididrv.New()
	return &m
}

// Outputs yields the names of the output ports.
func (c *RTMIDIContext) Outputs(yield func(name string) bool) {
	if c.driver == nil {
		return
	}
	outs, err := c.driver.Outs()
	if err != nil {
		return
	}
	for _, out := range outs {
		if !yield(out.String()) {
			return
		}
	}
}

// Open opens the first output port whose name starts with namePrefix, or the
// first port if namePrefix is empty, closing the currently open port.
func (c *RTMIDIContext) Open(namePrefix string) (drivers.Out, error) {
	if c.driver == nil {
		return nil, errors.New("no driver available")
	}
	outs, err := c.driver.Outs()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI outputs failed: %w", err)
	}
	for _, out := range outs {
		if !strings.HasPrefix(out.String(), namePrefix) {
			continue
		}
		if c.currentOut != nil && c.currentOut.IsOpen() {
			c.currentOut.Close()
		}
		if err := out.Open(); err != nil {
			return nil, fmt.Errorf("opening MIDI output failed: %w", err)
		}
		c.currentOut = out
		return out, nil
	}
	if namePrefix == "" {
		return nil, errors.New("could not find any MIDI output")
	}
	return nil, fmt.Errorf("could not find any MIDI output starting with %q", namePrefix)
}

func (c *RTMIDIContext) Close() {
	if c.driver == nil {
		return
	}
	if c.currentOut != nil && c.currentOut.IsOpen() {
		c.currentOut.Close()
	}
	c.driver.Close()
}

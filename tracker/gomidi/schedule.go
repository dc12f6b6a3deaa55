package gomidi

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/chroniclehub/ligature"
)

type (
	// Event is a MIDI message due At since the start of the playback.
	Event struct {
		At  time.Duration
		Msg midi.Message
	}

	// Channels assigns a MIDI channel to every lane of a track: instrument
	// lanes first, in the order of the [INSTRUMENTS] section, then the rest
	// sorted by name. Channels wrap around after 16 lanes.
	Channels struct {
		Lanes   []string
		channel map[string]uint8
	}
)

const (
	numChannels        = 16
	controlAllNotesOff = 123
)

// MakeChannels assigns the channels to the lanes the notes play on.
func MakeChannels(t *ligature.ParsedTrack, notes []ligature.ScheduledNote) Channels {
	ret := Channels{channel: map[string]uint8{}}
	add := func(lane string) {
		if _, ok := ret.channel[lane]; ok {
			return
		}
		ret.channel[lane] = uint8(len(ret.Lanes) % numChannels)
		ret.Lanes = append(ret.Lanes, lane)
	}
	for _, instr := range t.Instruments {
		add(instr.Name)
	}
	var rest []string
	for _, n := range notes {
		if _, ok := ret.channel[n.Lane]; !ok {
			rest = append(rest, n.Lane)
		}
	}
	sort.Strings(rest)
	for _, lane := range rest {
		add(lane)
	}
	return ret
}

// Channel returns the channel of a lane.
func (c Channels) Channel(lane string) uint8 { return c.channel[lane] }

// Program returns the General MIDI program of an instrument preset, if the
// preset is a program number ("33") or prefixed with "gm:" ("gm:33").
func Program(preset string) (uint8, bool) {
	p, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(preset), "gm:"))
	if err != nil || p < 0 || p > 127 {
		return 0, false
	}
	return uint8(p), true
}

// Schedule flattens a track into timed MIDI messages: the program changes of
// the instruments at time zero, then the note ons and offs. At equal times,
// note offs come before note ons, so that repeated notes retrigger.
func Schedule(t *ligature.ParsedTrack) []Event {
	notes := ligature.Sequence(t)
	channels := MakeChannels(t, notes)
	timing := t.Config.Timing()
	type keyed struct {
		Event
		order int
	}
	var events []keyed
	for _, instr := range t.Instruments {
		if p, ok := Program(instr.Preset); ok {
			events = append(events, keyed{Event{0, midi.ProgramChange(channels.Channel(instr.Name), p)}, 0})
		}
	}
	for _, n := range notes {
		ch, key := channels.Channel(n.Lane), uint8(n.Key)
		on := timing.StepsToDuration(n.Start)
		off := timing.StepsToDuration(n.Start + n.Length)
		events = append(events,
			keyed{Event{on, midi.NoteOn(ch, key, uint8(n.Velocity))}, 2},
			keyed{Event{off, midi.NoteOff(ch, key)}, 1})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].At != events[j].At {
			return events[i].At < events[j].At
		}
		return events[i].order < events[j].order
	})
	ret := make([]Event, len(events))
	for i := range events {
		ret[i] = events[i].Event
	}
	return ret
}

// AllNotesOff returns the messages silencing every channel.
func AllNotesOff() []midi.Message {
	ret := make([]midi.Message, numChannels)
	for ch := range ret {
		ret[ch] = midi.ControlChange(uint8(ch), controlAllNotesOff, 0)
	}
	return ret
}

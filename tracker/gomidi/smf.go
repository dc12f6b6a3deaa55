package gomidi

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/chroniclehub/ligature"
)

// TicksPerQuarter is the resolution of the exported MIDI files.
const TicksPerQuarter = 960

type tickedMsg struct {
	tick  uint32
	order int
	msg   midi.Message
}

// WriteSMF writes the whole playlist of the track as a type 1 Standard MIDI
// File: a tempo track followed by one track per lane.
func WriteSMF(w io.Writer, t *ligature.ParsedTrack) error {
	s, err := MakeSMF(t)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("could not write MIDI file: %w", err)
	}
	return nil
}

// MakeSMF converts the track to a Standard MIDI File.
func MakeSMF(t *ligature.ParsedTrack) (*smf.SMF, error) {
	cfg := t.Config
	if cfg.Grid <= 0 || cfg.TimeSig.Unit <= 0 || cfg.BPM <= 0 {
		return nil, fmt.Errorf("invalid timing in track config: %+v", cfg)
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	// BPM counts time signature units; MIDI tempo counts quarter notes
	quarterBPM := cfg.BPM * 4 / float64(cfg.TimeSig.Unit)
	ticksPerStep := float64(TicksPerQuarter) * 4 / float64(cfg.TimeSig.Unit*cfg.Grid)
	tick := func(steps float64) uint32 { return uint32(math.Round(steps * ticksPerStep)) }

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(uint8(cfg.TimeSig.BeatsPerBar), uint8(cfg.TimeSig.Unit)))
	tempo.Add(0, smf.MetaTempo(quarterBPM))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	notes := ligature.Sequence(t)
	channels := MakeChannels(t, notes)
	byLane := map[string][]tickedMsg{}
	for _, instr := range t.Instruments {
		if p, ok := Program(instr.Preset); ok {
			byLane[instr.Name] = append(byLane[instr.Name], tickedMsg{0, 0, midi.ProgramChange(channels.Channel(instr.Name), p)})
		}
	}
	for _, n := range notes {
		ch, key := channels.Channel(n.Lane), uint8(n.Key)
		byLane[n.Lane] = append(byLane[n.Lane],
			tickedMsg{tick(n.Start), 2, midi.NoteOn(ch, key, uint8(n.Velocity))},
			tickedMsg{tick(n.Start + n.Length), 1, midi.NoteOff(ch, key)})
	}
	for _, lane := range channels.Lanes {
		msgs := byLane[lane]
		sort.SliceStable(msgs, func(i, j int) bool {
			if msgs[i].tick != msgs[j].tick {
				return msgs[i].tick < msgs[j].tick
			}
			return msgs[i].order < msgs[j].order
		})
		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(lane))
		var last uint32
		for _, m := range msgs {
			track.Add(m.tick-last, m.msg)
			last = m.tick
		}
		track.Close(0)
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("error adding track %q: %w", lane, err)
		}
	}
	return s, nil
}

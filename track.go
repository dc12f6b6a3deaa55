// Package ligature implements the Ligature music description format: the
// track document model, the parser, the serializer and the linter, the scale
// degree resolver and the sequencer that flattens a playlist into notes.
package ligature

import (
	"math"

	"golang.org/x/exp/slices"
)

type (
	// ParsedTrack is the in-memory representation of a Ligature document: the
	// config, the pattern table and the playlist. It is a disposable projection
	// of the text; editors never keep references to its nested structures
	// across edits, but copy the whole track, mutate the copy and serialize it
	// back to text.
	ParsedTrack struct {
		Config      TrackConfig
		Instruments []Instrument   `yaml:",omitempty"`
		Patterns    []Pattern      `yaml:",omitempty"`
		Playlist    []PlaylistItem `yaml:",omitempty"`
	}

	// TrackConfig holds the musical configuration of a track. BPM counts beats
	// of the time signature unit and Grid is the number of steps in one beat;
	// all pattern durations and event times are expressed in steps.
	TrackConfig struct {
		BPM       float64
		Grid      int
		TimeSig   TimeSig
		ScaleRoot string
		ScaleMode string
	}

	// TimeSig is a time signature, e.g. {4, 4} or {6, 8}.
	TimeSig struct {
		BeatsPerBar int
		Unit        int
	}

	// Instrument binds a lane name to an instrument preset of the external
	// audio engine. The core treats the preset as opaque.
	Instrument struct {
		Name   string
		Preset string
	}
)

// MissingPatternDuration is the duration, in steps, used for chain items that
// reference a pattern not found in the pattern table.
const MissingPatternDuration = 16

// DefaultConfig returns the config used for the keys a document does not set.
func DefaultConfig() TrackConfig {
	return TrackConfig{
		BPM:       120,
		Grid:      4,
		TimeSig:   TimeSig{BeatsPerBar: 4, Unit: 4},
		ScaleRoot: "C",
		ScaleMode: "Major",
	}
}

// Copy makes a deep copy of a ParsedTrack.
func (t *ParsedTrack) Copy() *ParsedTrack {
	ret := &ParsedTrack{Config: t.Config}
	if t.Instruments != nil {
		ret.Instruments = slices.Clone(t.Instruments)
	}
	if t.Patterns != nil {
		ret.Patterns = make([]Pattern, len(t.Patterns))
		for i, p := range t.Patterns {
			ret.Patterns[i] = p.Copy()
		}
	}
	if t.Playlist != nil {
		ret.Playlist = make([]PlaylistItem, len(t.Playlist))
		for i, item := range t.Playlist {
			ret.Playlist[i] = item.Copy()
		}
	}
	return ret
}

// Pattern returns a pointer to the pattern with the given id, so it can be
// modified in place, or false if there is no such pattern.
func (t *ParsedTrack) Pattern(id string) (*Pattern, bool) {
	for i := range t.Patterns {
		if t.Patterns[i].ID == id {
			return &t.Patterns[i], true
		}
	}
	return nil, false
}

// PatternIDs returns the pattern ids in definition order.
func (t *ParsedTrack) PatternIDs() []string {
	ret := make([]string, len(t.Patterns))
	for i, p := range t.Patterns {
		ret[i] = p.ID
	}
	return ret
}

// FirstPatternID returns the id of the first defined pattern, or "Main" if the
// track has no patterns.
func (t *ParsedTrack) FirstPatternID() string {
	if len(t.Patterns) == 0 {
		return "Main"
	}
	return t.Patterns[0].ID
}

// PatternDuration returns the duration of the pattern with the given id. If
// the pattern does not exist, MissingPatternDuration is returned with ok ==
// false.
func (t *ParsedTrack) PatternDuration(id string) (duration int, ok bool) {
	if p, ok := t.Pattern(id); ok {
		return p.Duration, true
	}
	return MissingPatternDuration, false
}

// Instrument returns the instrument bound to a lane name.
func (t *ParsedTrack) Instrument(name string) (Instrument, bool) {
	for _, instr := range t.Instruments {
		if instr.Name == name {
			return instr, true
		}
	}
	return Instrument{}, false
}

// SetGrid changes the grid resolution of the whole track, rescaling every
// pattern duration (rounded) and every event time and duration (not rounded)
// by newGrid/oldGrid. Returns false if the grid does not change or newGrid is
// not positive.
func (t *ParsedTrack) SetGrid(newGrid int) bool {
	oldGrid := t.Config.Grid
	if newGrid <= 0 || newGrid == oldGrid {
		return false
	}
	if oldGrid <= 0 {
		t.Config.Grid = newGrid
		return true
	}
	for i := range t.Patterns {
		t.Patterns[i].rescale(float64(newGrid), float64(oldGrid))
	}
	t.Config.Grid = newGrid
	return true
}

// LengthInSteps returns the total length of the playlist in steps, the rows
// being played back to back.
func (t *ParsedTrack) LengthInSteps() int {
	ret := 0
	for _, item := range t.Playlist {
		ret += item.Duration(t)
	}
	return ret
}

// RowStart returns the step at which the playlist row with the given index
// starts.
func (t *ParsedTrack) RowStart(index int) int {
	ret := 0
	for i := 0; i < index && i < len(t.Playlist); i++ {
		ret += t.Playlist[i].Duration(t)
	}
	return ret
}

// rescale scales by num/den, multiplying before dividing so that 4 -> 3 -> 4
// gives back the exact times.
func (p *Pattern) rescale(num, den float64) {
	p.Duration = int(math.Round(float64(p.Duration) * num / den))
	for _, events := range p.Tracks {
		for i := range events {
			events[i].Time = events[i].Time * num / den
			events[i].Duration = events[i].Duration * num / den
		}
	}
}

package ligature

import (
	"math"

	"golang.org/x/exp/slices"
)

// ScheduledNote is a note of the track placed in absolute time. Start and
// Length are in steps from the beginning of the playlist.
type ScheduledNote struct {
	Start     float64
	Length    float64
	Lane      string
	PatternID string
	Row       int
	Key       int
	Velocity  int
}

// DefaultVelocity is used for events without a volume modifier.
const DefaultVelocity = 100

// Sequence flattens the playlist into notes in absolute time. Rows are played
// back to back, each lasting as long as its longest layer; layers play in
// parallel and the chain items of a layer one after another. Command rows and
// missing patterns produce no notes, and notes that cannot be resolved to a
// MIDI key (out of range, unknown mode) are skipped. The result is sorted by
// start time.
func Sequence(t *ParsedTrack) []ScheduledNote {
	var ret []ScheduledNote
	rowStart := 0
	for row := range t.Playlist {
		item := &t.Playlist[row]
		if item.Type == CommandItem {
			continue
		}
		for l := range item.Layers {
			for _, seg := range item.Layers[l].Segments(t) {
				if seg.Missing {
					continue
				}
				p, _ := t.Pattern(seg.PatternID)
				offset := float64(rowStart + seg.Start)
				for _, lane := range p.Lanes() {
					for _, e := range p.Tracks[lane] {
						ret = appendEventNotes(ret, t.Config, &e, ScheduledNote{
							Start:     offset + e.Time,
							Length:    e.Duration,
							Lane:      lane,
							PatternID: seg.PatternID,
							Row:       row,
						}, seg.Transposition)
					}
				}
			}
		}
		rowStart += item.Duration(t)
	}
	slices.SortStableFunc(ret, func(a, b ScheduledNote) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return ret
}

func appendEventNotes(notes []ScheduledNote, cfg TrackConfig, e *NoteEvent, base ScheduledNote, transpose int) []ScheduledNote {
	velocity := EventVelocity(e)
	if velocity == 0 {
		return notes
	}
	octave := 0
	if e.OctaveShift != nil {
		octave = *e.OctaveShift
	}
	for _, n := range e.Notes {
		key, err := n.Key(cfg, octave, transpose)
		if err != nil {
			continue
		}
		s := base
		s.Key = key
		s.Velocity = velocity
		notes = append(notes, s)
	}
	return notes
}

// EventVelocity returns the MIDI velocity of an event. Volumes are in the
// range 0..1; larger values are clamped.
func EventVelocity(e *NoteEvent) int {
	if e.Volume == nil {
		return DefaultVelocity
	}
	v := int(math.Round(*e.Volume * 127))
	return max(min(v, 127), 0)
}

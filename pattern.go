package ligature

import (
	"math"
	"sort"

	"golang.org/x/exp/slices"
)

type (
	// Pattern is a named block of music, Duration steps long, holding one
	// event list per instrument lane. Lanes are created lazily; the lane name
	// is the identity of the lane. Duration does not have to match the extent
	// of the events: it decides where chained patterns seam together.
	Pattern struct {
		ID       string
		Duration int
		Tracks   map[string][]NoteEvent `yaml:",omitempty"`
	}

	// NoteEvent is a note or chord starting at Time (in steps, relative to
	// the start of the pattern) and lasting Duration steps. Volume and
	// OctaveShift are optional.
	NoteEvent struct {
		Time        float64
		Duration    float64
		Notes       []NoteDef `yaml:",flow"`
		Volume      *float64  `yaml:",omitempty"`
		OctaveShift *int      `yaml:",omitempty"`
		Effects     []Effect  `yaml:",omitempty,flow"`
	}

	// NoteDef is a scale degree (1-based) with an accidental (-1 flat, 0
	// natural, 1 sharp) and an octave shift. IsNatural forces the diatonic
	// note, ignoring any accidental.
	NoteDef struct {
		Degree      int
		Accidental  int  `yaml:",omitempty"`
		OctaveShift int  `yaml:",omitempty"`
		IsNatural   bool `yaml:",omitempty"`
	}

	// Effect is a single-letter effect code with a signed value, e.g. F50.
	Effect struct {
		Code  string
		Value int
	}
)

// EventTolerance is the maximum distance between an event time and a step for
// the event to be considered to start at that step. It is the event identity
// rule for all edits.
const EventTolerance = 0.01

// Copy makes a deep copy of a Pattern.
func (p *Pattern) Copy() Pattern {
	ret := Pattern{ID: p.ID, Duration: p.Duration}
	if p.Tracks != nil {
		ret.Tracks = make(map[string][]NoteEvent, len(p.Tracks))
		for lane, events := range p.Tracks {
			newEvents := make([]NoteEvent, len(events))
			for i := range events {
				newEvents[i] = events[i].Copy()
			}
			ret.Tracks[lane] = newEvents
		}
	}
	return ret
}

// Copy makes a deep copy of a NoteEvent.
func (e *NoteEvent) Copy() NoteEvent {
	ret := NoteEvent{Time: e.Time, Duration: e.Duration}
	if e.Notes != nil {
		ret.Notes = slices.Clone(e.Notes)
	}
	if e.Volume != nil {
		v := *e.Volume
		ret.Volume = &v
	}
	if e.OctaveShift != nil {
		o := *e.OctaveShift
		ret.OctaveShift = &o
	}
	if e.Effects != nil {
		ret.Effects = slices.Clone(e.Effects)
	}
	return ret
}

// End returns the time at which the event stops sounding.
func (e *NoteEvent) End() float64 {
	return e.Time + e.Duration
}

// Lanes returns the lane names of the pattern in lexicographic order.
func (p *Pattern) Lanes() []string {
	ret := make([]string, 0, len(p.Tracks))
	for lane := range p.Tracks {
		ret = append(ret, lane)
	}
	sort.Strings(ret)
	return ret
}

// FindEvent returns the index of the event in the lane whose time is within
// EventTolerance of t, or -1 if there is none.
func (p *Pattern) FindEvent(lane string, t float64) int {
	for i, e := range p.Tracks[lane] {
		if math.Abs(e.Time-t) < EventTolerance {
			return i
		}
	}
	return -1
}

// Event returns a pointer to the event of the lane starting at t, creating a
// new event (lane included) if there is none. The new event is appended;
// callers should call SortLane after modifying it.
func (p *Pattern) Event(lane string, t float64) (e *NoteEvent, created bool) {
	if i := p.FindEvent(lane, t); i >= 0 {
		return &p.Tracks[lane][i], false
	}
	if p.Tracks == nil {
		p.Tracks = map[string][]NoteEvent{}
	}
	p.Tracks[lane] = append(p.Tracks[lane], NoteEvent{Time: t, Duration: 1})
	events := p.Tracks[lane]
	return &events[len(events)-1], true
}

// DeleteEvent removes the event of the lane starting at t. Returns false if
// there was no such event. The lane is kept even if it becomes empty.
func (p *Pattern) DeleteEvent(lane string, t float64) bool {
	i := p.FindEvent(lane, t)
	if i < 0 {
		return false
	}
	p.Tracks[lane] = slices.Delete(p.Tracks[lane], i, i+1)
	return true
}

// SortLane sorts the events of a lane by ascending time. The sort is stable,
// so events with equal times keep their relative order.
func (p *Pattern) SortLane(lane string) {
	if events, ok := p.Tracks[lane]; ok {
		sortByTime(events)
	}
}

func sortByTime(events []NoteEvent) {
	slices.SortStableFunc(events, func(a, b NoteEvent) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
}

// SortEvents sorts every lane of the pattern.
func (p *Pattern) SortEvents() {
	for lane := range p.Tracks {
		p.SortLane(lane)
	}
}

// EventsEnd returns the end time of the last sounding event of the pattern.
func (p *Pattern) EventsEnd() float64 {
	ret := 0.0
	for _, events := range p.Tracks {
		for i := range events {
			ret = math.Max(ret, events[i].End())
		}
	}
	return ret
}

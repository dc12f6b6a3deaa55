package tracker

import (
	"math"
	"strconv"

	"github.com/chroniclehub/ligature"
)

/*
	from the parsed track we derive the materialized grid columns, because of
	the nested iterations over the playlist row, its layers, their chains and
	the lanes of the chained patterns. i.e. this needs to update when the text
	or the view changes, and only then.
*/

type (
	// Column is one materialized column of the tracker grid. Events has one
	// slot per row, non-nil where an event starts. Segments are the spans of
	// the chain the column belongs to; Resolve uses them to map a row back to
	// the pattern that owns it.
	Column struct {
		Name     string
		Lane     string
		Layer    int // -1 in pattern mode
		Events   []*ligature.NoteEvent
		Segments []ligature.Segment
	}

	derivedModelData struct {
		columns     []Column
		maxDuration int
	}
)

func (m *Model) updateDerived() {
	m.derived = derivedModelData{}
	if m.track == nil {
		return
	}
	if m.d.Mode == PatternMode {
		m.derivePattern()
	} else {
		m.deriveContext()
	}
	m.clampCursor()
}

func (m *Model) derivePattern() {
	if _, ok := m.track.Pattern(m.d.PatternID); !ok {
		m.d.PatternID = m.track.FirstPatternID()
	}
	p, ok := m.track.Pattern(m.d.PatternID)
	if !ok {
		return
	}
	m.derived.maxDuration = p.Duration
	segments := []ligature.Segment{{Start: 0, End: p.Duration, PatternID: p.ID}}
	for _, lane := range p.Lanes() {
		col := Column{Name: lane, Lane: lane, Layer: -1, Segments: segments}
		col.Events = make([]*ligature.NoteEvent, p.Duration)
		placeEvents(col.Events, p.Tracks[lane], 0)
		m.derived.columns = append(m.derived.columns, col)
	}
}

func (m *Model) deriveContext() {
	if len(m.track.Playlist) == 0 {
		m.d.PlaylistRow = 0
		return
	}
	m.d.PlaylistRow = max(min(m.d.PlaylistRow, len(m.track.Playlist)-1), 0)
	item := &m.track.Playlist[m.d.PlaylistRow]
	if item.Type != ligature.PatternItem {
		return
	}
	maxDuration := 0
	for i := range item.Layers {
		maxDuration = max(maxDuration, item.Layers[i].Duration(m.track))
	}
	m.derived.maxDuration = maxDuration
	index := map[string]int{}
	for li := range item.Layers {
		prefix := "L" + strconv.Itoa(li) + ":"
		segments := item.Layers[li].Segments(m.track)
		for _, seg := range segments {
			p, ok := m.track.Pattern(seg.PatternID)
			if !ok {
				continue
			}
			for _, lane := range p.Lanes() {
				name := prefix + lane
				ci, ok := index[name]
				if !ok {
					ci = len(m.derived.columns)
					index[name] = ci
					m.derived.columns = append(m.derived.columns, Column{
						Name:     name,
						Lane:     lane,
						Layer:    li,
						Events:   make([]*ligature.NoteEvent, maxDuration),
						Segments: segments,
					})
				}
				placeEvents(m.derived.columns[ci].Events, p.Tracks[lane], seg.Start)
			}
		}
	}
}

// placeEvents puts the events to the slots floor(start + time). Events
// outside the slots are dropped; the later of two events landing on the same
// slot wins.
func placeEvents(slots []*ligature.NoteEvent, events []ligature.NoteEvent, start int) {
	for i := range events {
		row := int(math.Floor(float64(start) + events[i].Time))
		if row >= 0 && row < len(slots) {
			slots[row] = &events[i]
		}
	}
}

func (m *Model) clampCursor() {
	c := &m.d.Cursor
	c.Row = max(min(c.Row, m.derived.maxDuration-1), 0)
	c.Col = max(min(c.Col, len(m.derived.columns)-1), 0)
	c.Sub = max(min(c.Sub, SubFX), SubNote)
}

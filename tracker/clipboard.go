package tracker

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/chroniclehub/ligature"
)

// clipboardData is what gets copied from the grid: the events of one column,
// with times relative to the first copied row.
type clipboardData struct {
	Lane   string
	Events []ligature.NoteEvent
}

// CopyColumn marshals the events starting at rows [from, to] of column col
// to yaml. ok is false if there was nothing to copy.
func (m *EditorModel) CopyColumn(col, from, to int) (data []byte, ok bool) {
	if col < 0 || col >= len(m.derived.columns) {
		return nil, false
	}
	if from > to {
		from, to = to, from
	}
	c := &m.derived.columns[col]
	from, to = max(from, 0), min(to, len(c.Events)-1)
	clip := clipboardData{Lane: c.Lane}
	for row := from; row <= to; row++ {
		e := c.Events[row]
		if e == nil {
			continue
		}
		seg, ok := ligature.SegmentAt(c.Segments, row)
		if !ok {
			continue
		}
		copied := e.Copy()
		copied.Time = float64(seg.Start) + e.Time - float64(from)
		clip.Events = append(clip.Events, copied)
	}
	if len(clip.Events) == 0 {
		return nil, false
	}
	ret, err := yaml.Marshal(clip)
	if err != nil {
		return nil, false
	}
	return ret, true
}

// Paste writes the events of the clipboard data to the column under the
// cursor, the first copied row landing on the cursor row. Events that would
// land past the end of the chain are dropped; existing events at the same
// times are replaced.
func (m *EditorModel) Paste(data []byte) {
	var clip clipboardData
	if err := yaml.Unmarshal(data, &clip); err != nil {
		(*Model)(m).Alerts().Add(fmt.Sprintf("Error unmarshaling the clipboard: %v", err), Error)
		return
	}
	if len(clip.Events) == 0 {
		return
	}
	for i := range clip.Events {
		if _, err := ligature.ParseEvent(ligature.FormatEvent(&clip.Events[i])); err != nil {
			(*Model)(m).Alerts().Add(fmt.Sprintf("Invalid event in the clipboard: %v", err), Error)
			return
		}
	}
	defer (*Model)(m).change("Paste")()
	changed := false
	for _, e := range clip.Events {
		offset := math.Floor(e.Time)
		addr, ok := m.Grid().Resolve(m.d.Cursor.Col, m.d.Cursor.Row+int(offset))
		if !ok {
			continue
		}
		p, ok := m.scratch.Pattern(addr.PatternID)
		if !ok {
			continue
		}
		e.Time = addr.LocalTime + e.Time - offset
		if i := p.FindEvent(addr.Lane, e.Time); i >= 0 {
			p.Tracks[addr.Lane][i] = e
		} else {
			if p.Tracks == nil {
				p.Tracks = map[string][]ligature.NoteEvent{}
			}
			p.Tracks[addr.Lane] = append(p.Tracks[addr.Lane], e)
		}
		p.SortLane(addr.Lane)
		changed = true
	}
	if !changed {
		m.changeCancel = true
	}
}

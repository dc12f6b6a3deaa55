package ligature

import (
	"fmt"
	"strconv"
	"strings"
)

// Serialize writes a track back to Ligature text. It is the inverse of Parse:
// Parse(Serialize(t)) is structurally equal to t for any t returned by Parse.
// Lanes are written in lexicographic order and events sorted by time, so the
// text is not necessarily byte-identical to the one originally parsed.
func Serialize(t *ParsedTrack) string {
	var b strings.Builder
	cfg := t.Config
	b.WriteString("[CONFIG]\n")
	fmt.Fprintf(&b, "BPM: %s\n", FormatNumber(cfg.BPM))
	fmt.Fprintf(&b, "Grid: %d\n", cfg.Grid)
	fmt.Fprintf(&b, "Time: %d/%d\n", cfg.TimeSig.BeatsPerBar, cfg.TimeSig.Unit)
	fmt.Fprintf(&b, "Scale: %s %s\n", cfg.ScaleRoot, cfg.ScaleMode)
	if len(t.Instruments) > 0 {
		b.WriteString("\n[INSTRUMENTS]\n")
		for _, instr := range t.Instruments {
			fmt.Fprintf(&b, "%s: %s\n", instr.Name, instr.Preset)
		}
	}
	for i := range t.Patterns {
		p := &t.Patterns[i]
		fmt.Fprintf(&b, "\n[PATTERN: %s]\n", p.ID)
		fmt.Fprintf(&b, "Duration: %d\n", p.Duration)
		lanes := p.Lanes()
		width := 0
		for _, lane := range lanes {
			width = max(width, len(lane))
		}
		for _, lane := range lanes {
			events := append([]NoteEvent(nil), p.Tracks[lane]...)
			sortByTime(events)
			fmt.Fprintf(&b, "%-*s | %s\n", width, lane, FormatEventList(events))
		}
	}
	if len(t.Playlist) > 0 {
		b.WriteString("\n[PLAYLIST]\n")
		for i := range t.Playlist {
			b.WriteString(FormatPlaylistItem(&t.Playlist[i]))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// FormatNumber formats a number with the fewest digits that parse back to the
// exact same value.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatEventList formats events as a lane line body.
func FormatEventList(events []NoteEvent) string {
	parts := make([]string, len(events))
	for i := range events {
		parts[i] = FormatEvent(&events[i])
	}
	return strings.Join(parts, " ; ")
}

// FormatEvent formats a single event: "time duration notes [modifiers...]".
func FormatEvent(e *NoteEvent) string {
	var b strings.Builder
	b.WriteString(FormatNumber(e.Time))
	b.WriteByte(' ')
	b.WriteString(FormatNumber(e.Duration))
	b.WriteByte(' ')
	b.WriteString(FormatNotes(e.Notes))
	if e.Volume != nil {
		b.WriteString(" v")
		b.WriteString(FormatNumber(*e.Volume))
	}
	if e.OctaveShift != nil {
		fmt.Fprintf(&b, " o%d", *e.OctaveShift)
	}
	for _, fx := range e.Effects {
		b.WriteByte(' ')
		b.WriteString(fx.String())
	}
	return b.String()
}

// FormatNotes formats a note or a chord.
func FormatNotes(notes []NoteDef) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = n.String()
	}
	return strings.Join(parts, "+")
}

func (n NoteDef) String() string {
	var b strings.Builder
	switch {
	case n.IsNatural:
		b.WriteByte('n')
	case n.Accidental > 0:
		b.WriteByte('#')
	case n.Accidental < 0:
		b.WriteByte('b')
	}
	b.WriteString(strconv.Itoa(n.Degree))
	for i := 0; i < n.OctaveShift; i++ {
		b.WriteByte('\'')
	}
	for i := 0; i > n.OctaveShift; i-- {
		b.WriteByte(',')
	}
	return b.String()
}

func (fx Effect) String() string {
	return fx.Code + strconv.Itoa(fx.Value)
}

// FormatPlaylistItem formats a playlist row.
func FormatPlaylistItem(item *PlaylistItem) string {
	if item.Type == CommandItem {
		return "!" + item.Command
	}
	if len(item.Layers) == 0 {
		return EmptyRow
	}
	layers := make([]string, len(item.Layers))
	for i, l := range item.Layers {
		items := make([]string, len(l.Items))
		for j, c := range l.Items {
			items[j] = c.String()
		}
		layers[i] = strings.Join(items, ", ")
	}
	return strings.Join(layers, " | ")
}

func (c ChainItem) String() string {
	if c.Transposition == 0 {
		return c.ID
	}
	return fmt.Sprintf("%s(%+d)", c.ID, c.Transposition)
}

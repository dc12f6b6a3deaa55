package tracker

import (
	"strconv"
	"strings"

	"github.com/chroniclehub/ligature"
)

type (
	// ViewMode tells what the tracker grid shows: one playlist row with all
	// its layers (ContextMode) or one pattern in isolation (PatternMode).
	ViewMode int

	// GridModel is the tracker grid view of the model.
	GridModel Model

	// CellAddress is where an edit of a grid cell goes: the event of Lane in
	// pattern PatternID starting at LocalTime.
	CellAddress struct {
		PatternID string
		LocalTime float64
		Lane      string
	}

	CellKind int

	// CellView is the text of the three sub-cells of a grid cell.
	CellView struct {
		Kind          CellKind
		Note, Mod, FX string
	}
)

const (
	ContextMode ViewMode = iota
	PatternMode
)

const (
	CellEmpty CellKind = iota
	CellNote
	CellSustain
)

const sustainEpsilon = 0.001

const (
	SustainGlyph   = "|"
	EmptyNoteGlyph = "..."
	EmptyModGlyph  = ".."
	EmptyFXGlyph   = "..."
)

func (m *Model) Grid() *GridModel { return (*GridModel)(m) }

func (m *GridModel) Mode() ViewMode    { return m.d.Mode }
func (m *GridModel) PlaylistRow() int  { return m.d.PlaylistRow }
func (m *GridModel) PatternID() string { return m.d.PatternID }
func (m *GridModel) Columns() []Column { return m.derived.columns }
func (m *GridModel) MaxDuration() int  { return m.derived.maxDuration }
func (m *GridModel) Cursor() Cursor    { return m.d.Cursor }

// SetRow shows the playlist row index in context mode.
func (m *GridModel) SetRow(index int) {
	m.d.Mode = ContextMode
	m.d.PlaylistRow = index
	m.inputBuffer = ""
	(*Model)(m).updateDerived()
}

// SetPattern shows the pattern id in pattern mode. An unknown id selects the
// first pattern of the track.
func (m *GridModel) SetPattern(id string) {
	m.d.Mode = PatternMode
	m.d.PatternID = id
	m.inputBuffer = ""
	(*Model)(m).updateDerived()
}

// Resolve maps a row of a column back to the pattern, local time and lane it
// shows. ok is false past the end of the column's chain or outside the grid.
func (m *GridModel) Resolve(col, row int) (addr CellAddress, ok bool) {
	if col < 0 || col >= len(m.derived.columns) || row < 0 || row >= m.derived.maxDuration {
		return CellAddress{}, false
	}
	c := &m.derived.columns[col]
	seg, ok := ligature.SegmentAt(c.Segments, row)
	if !ok {
		return CellAddress{}, false
	}
	return CellAddress{PatternID: seg.PatternID, LocalTime: float64(row - seg.Start), Lane: c.Lane}, true
}

// Classify tells if an event starts at the row, an earlier event is still
// sounding at the row or neither.
func (m *GridModel) Classify(col, row int) CellKind {
	if col < 0 || col >= len(m.derived.columns) {
		return CellEmpty
	}
	events := m.derived.columns[col].Events
	if row < 0 || row >= len(events) {
		return CellEmpty
	}
	if events[row] != nil {
		return CellNote
	}
	for i := row - 1; i >= 0; i-- {
		if e := events[i]; e != nil && float64(row) < float64(i)+e.Duration-sustainEpsilon {
			return CellSustain
		}
	}
	return CellEmpty
}

// CellText returns the text of a grid cell. Notes that cannot be resolved in
// the scale of the track are shown as '?'.
func (m *GridModel) CellText(col, row int) CellView {
	switch kind := m.Classify(col, row); kind {
	case CellNote:
		e := m.derived.columns[col].Events[row]
		return CellView{Kind: kind, Note: noteText(m.track.Config, e), Mod: modText(e), FX: fxText(e)}
	case CellSustain:
		return CellView{Kind: kind, Note: SustainGlyph, Mod: EmptyModGlyph, FX: EmptyFXGlyph}
	default:
		return CellView{Kind: kind, Note: EmptyNoteGlyph, Mod: EmptyModGlyph, FX: EmptyFXGlyph}
	}
}

func noteText(cfg ligature.TrackConfig, e *ligature.NoteEvent) string {
	octave := 0
	if e.OctaveShift != nil {
		octave = *e.OctaveShift
	}
	names := make([]string, 0, len(e.Notes))
	for _, n := range e.Notes {
		name, err := n.Name(cfg, octave)
		if err != nil {
			name = "?"
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "?"
	}
	return strings.Join(names, " ")
}

func modText(e *ligature.NoteEvent) string {
	var parts []string
	if e.Volume != nil {
		parts = append(parts, "v"+ligature.FormatNumber(*e.Volume))
	}
	if e.OctaveShift != nil {
		parts = append(parts, "o"+strconv.Itoa(*e.OctaveShift))
	}
	if len(parts) == 0 {
		return EmptyModGlyph
	}
	return strings.Join(parts, " ")
}

func fxText(e *ligature.NoteEvent) string {
	if len(e.Effects) == 0 {
		return EmptyFXGlyph
	}
	parts := make([]string, len(e.Effects))
	for i, fx := range e.Effects {
		parts[i] = fx.String()
	}
	return strings.Join(parts, " ")
}

// HeaderLabel formats a lane name for a column header: "Piano_#2" is shown as
// "Piano (2)".
func HeaderLabel(lane string) string {
	if base, suffix, ok := strings.Cut(lane, "_#"); ok {
		return base + " (" + suffix + ")"
	}
	return lane
}

// ActiveRow returns the row of the grid being played, or false if nothing
// is playing or the row is not visible in the grid. An audition counts steps
// from the start of what the grid shows, wrapping around in pattern mode.
// Song playback counts from the start of the playlist, so in context mode the
// start of the shown row is subtracted and in pattern mode no row is active.
func (m *GridModel) ActiveRow() (int, bool) {
	if !m.playing || m.derived.maxDuration <= 0 {
		return 0, false
	}
	step := m.trackerStep
	if m.d.Mode == PatternMode {
		if m.playingSong {
			return 0, false
		}
		return step % m.derived.maxDuration, true
	}
	if m.playingSong {
		step -= m.track.RowStart(m.d.PlaylistRow)
	}
	if step < 0 || step >= m.derived.maxDuration {
		return 0, false
	}
	return step, true
}

// AddLane returns an Action that prompts for a lane name and adds an empty
// lane to the pattern shown in pattern mode.
func (m *GridModel) AddLane() Action { return MakeAction((*addLane)(m)) }

type addLane GridModel

func (m *addLane) Enabled() bool { return m.d.Mode == PatternMode && m.derived.maxDuration > 0 }
func (m *addLane) Do() {
	name, ok := m.dialog.Prompt("Lane name", "")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return
	}
	if !validLaneName(name) {
		(*Model)(m).Alerts().Add("Invalid lane name "+strconv.Quote(name), Warning)
		return
	}
	defer (*Model)(m).change("AddLane")()
	p, ok := m.scratch.Pattern(m.d.PatternID)
	if !ok {
		m.changeCancel = true
		return
	}
	if _, exists := p.Tracks[name]; exists {
		m.changeCancel = true
		return
	}
	if p.Tracks == nil {
		p.Tracks = map[string][]ligature.NoteEvent{}
	}
	p.Tracks[name] = nil
}

func validLaneName(name string) bool {
	if strings.ContainsAny(name, "|;\n") {
		return false
	}
	return !strings.HasPrefix(name, "#") && !strings.HasPrefix(name, "//") && !strings.HasPrefix(name, "[")
}

package tracker

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chroniclehub/ligature"
)

type (
	// Cursor points to a sub-cell of the tracker grid: Sub is one of SubNote,
	// SubMod and SubFX.
	Cursor struct {
		Row, Col, Sub int
	}

	// Key is a key press given to the in-place editor: either a named key
	// (KeyEnter, KeyUp...) or the text of a printable key, e.g. "z" or "@".
	Key string

	// EditorModel is the in-place editor of the tracker grid. Typed keys go
	// to the input buffer, which is committed to the event under the cursor
	// by Enter or by moving the cursor.
	EditorModel Model
)

const (
	SubNote = iota
	SubMod
	SubFX
)

const (
	KeyEnter     Key = "⏎"
	KeyBackspace Key = "⌫"
	KeyDelete    Key = "⌦"
	KeyEscape    Key = "⎋"
	KeyUp        Key = "↑"
	KeyDown      Key = "↓"
	KeyLeft      Key = "←"
	KeyRight     Key = "→"
)

// noteKeys maps the bottom row of a QWERTY keyboard, played like a piano
// keyboard, to scale degrees: white keys step through the scale and black
// keys sharpen the degree to their left.
var noteKeys = map[string]ligature.NoteDef{
	"z": {Degree: 1},
	"s": {Degree: 1, Accidental: 1},
	"x": {Degree: 2},
	"d": {Degree: 2, Accidental: 1},
	"c": {Degree: 3},
	"v": {Degree: 4},
	"g": {Degree: 4, Accidental: 1},
	"b": {Degree: 5},
	"h": {Degree: 5, Accidental: 1},
	"n": {Degree: 6},
	"j": {Degree: 6, Accidental: 1},
	"m": {Degree: 7},
	",": {Degree: 1, OctaveShift: 1},
}

func (m *Model) Editor() *EditorModel { return (*EditorModel)(m) }

func (m *EditorModel) Cursor() Cursor { return m.d.Cursor }

// SetCursor moves the cursor without committing the input buffer. The
// cursor is clamped to the grid.
func (m *EditorModel) SetCursor(c Cursor) {
	m.d.Cursor = c
	(*Model)(m).clampCursor()
}

// Key handles a key press. Returns false if the key was not used.
func (m *EditorModel) Key(k Key) bool {
	switch k {
	case KeyUp, KeyDown, KeyLeft, KeyRight:
		m.Commit()
		m.move(k)
	case KeyEnter:
		m.Commit()
	case KeyEscape:
		m.inputBuffer = ""
	case KeyBackspace:
		if m.inputBuffer == "" {
			return false
		}
		_, size := utf8.DecodeLastRuneInString(m.inputBuffer)
		m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-size]
	case KeyDelete:
		if m.inputBuffer != "" {
			m.inputBuffer = ""
			return true
		}
		m.DeleteEvent()
	default:
		r, size := utf8.DecodeRuneInString(string(k))
		if size == 0 || size != len(k) || !unicode.IsPrint(r) {
			return false
		}
		return m.typeRune(string(k))
	}
	return true
}

// typeRune handles a printable key. In the note sub-column a note key sets
// the note at once, dropping whatever was typed, unless the buffer holds a
// chord reference starting with '@'.
func (m *EditorModel) typeRune(s string) bool {
	if n, ok := noteKeys[s]; ok && m.d.Cursor.Sub == SubNote && !strings.HasPrefix(m.inputBuffer, "@") {
		m.inputBuffer = ""
		m.setNotes([]ligature.NoteDef{n})
		return true
	}
	if m.inputBuffer == "" {
		if s == "." {
			m.DeleteEvent()
			return true
		}
		if s == " " {
			return false
		}
	}
	m.inputBuffer += s
	return true
}

func (m *EditorModel) move(k Key) {
	c := &m.d.Cursor
	switch k {
	case KeyUp:
		c.Row--
	case KeyDown:
		c.Row++
	case KeyLeft:
		if c.Sub > SubNote {
			c.Sub--
		} else if c.Col > 0 {
			c.Col--
			c.Sub = SubFX
		}
	case KeyRight:
		if c.Sub < SubFX {
			c.Sub++
		} else if c.Col < len(m.derived.columns)-1 {
			c.Col++
			c.Sub = SubNote
		}
	}
	(*Model)(m).clampCursor()
}

// Commit writes the input buffer to the event under the cursor and clears
// the buffer. Nothing happens if the cursor is past the end of the chain of
// its column or the buffer does not parse.
func (m *EditorModel) Commit() {
	buf := strings.TrimSpace(m.inputBuffer)
	m.inputBuffer = ""
	if buf == "" {
		return
	}
	switch m.d.Cursor.Sub {
	case SubNote:
		var notes []ligature.NoteDef
		var err error
		if strings.HasPrefix(buf, "@") {
			notes, err = ligature.ExpandChord(buf)
		} else {
			notes, err = ligature.ParseNotes(buf)
		}
		if err != nil {
			(*Model)(m).Alerts().Add(err.Error(), Warning)
			return
		}
		m.setNotes(notes)
	case SubMod:
		m.edit("SetMod", func(e *ligature.NoteEvent) error { return applyMod(e, buf) })
	case SubFX:
		fx, err := ligature.ParseEffect(buf)
		if err != nil {
			(*Model)(m).Alerts().Add(err.Error(), Warning)
			return
		}
		m.edit("SetFX", func(e *ligature.NoteEvent) error {
			e.Effects = []ligature.Effect{fx}
			return nil
		})
	}
}

func (m *EditorModel) setNotes(notes []ligature.NoteDef) {
	m.edit("SetNote", func(e *ligature.NoteEvent) error {
		e.Notes = notes
		return nil
	})
}

// applyMod applies a modifier typed in the mod column: a bare number sets the
// volume, v<n> the volume, o<n> the octave shift and p<n> appends a P effect.
func applyMod(e *ligature.NoteEvent, s string) error {
	if v, err := ligature.ParseNumber(s); err == nil {
		e.Volume = &v
		return nil
	}
	value := s[1:]
	switch unicode.ToLower(rune(s[0])) {
	case 'v':
		v, err := ligature.ParseNumber(value)
		if err != nil {
			return fmt.Errorf("invalid volume %q", s)
		}
		e.Volume = &v
	case 'o':
		o, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid octave shift %q", s)
		}
		e.OctaveShift = &o
	case 'p':
		p, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid P effect %q", s)
		}
		e.Effects = append(e.Effects, ligature.Effect{Code: "P", Value: p})
	default:
		return fmt.Errorf("unknown modifier %q", s)
	}
	return nil
}

// edit locates or creates the event under the cursor and applies f to it. New
// events last one step and play the first degree of the scale.
func (m *EditorModel) edit(kind string, f func(e *ligature.NoteEvent) error) {
	addr, ok := m.Grid().Resolve(m.d.Cursor.Col, m.d.Cursor.Row)
	if !ok {
		return
	}
	defer (*Model)(m).change(kind)()
	p, ok := m.scratch.Pattern(addr.PatternID)
	if !ok {
		m.changeCancel = true
		return
	}
	e, created := p.Event(addr.Lane, addr.LocalTime)
	if created {
		e.Notes = []ligature.NoteDef{{Degree: 1}}
	}
	if err := f(e); err != nil {
		(*Model)(m).Alerts().Add(err.Error(), Warning)
		m.changeCancel = true
		return
	}
	p.SortLane(addr.Lane)
}

// DeleteEvent removes the event starting at the cursor, if there is one.
func (m *EditorModel) DeleteEvent() {
	addr, ok := m.Grid().Resolve(m.d.Cursor.Col, m.d.Cursor.Row)
	if !ok {
		return
	}
	defer (*Model)(m).change("DeleteEvent")()
	p, ok := m.scratch.Pattern(addr.PatternID)
	if !ok || !p.DeleteEvent(addr.Lane, addr.LocalTime) {
		m.changeCancel = true
	}
}

// Grid returns the grid the editor edits.
func (m *EditorModel) Grid() *GridModel { return (*GridModel)(m) }

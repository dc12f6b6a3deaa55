// Package render renders the tracker grid and the arrangement of a tracker
// model as plain text, through text/template templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/charmbracelet/lipgloss"

	"github.com/chroniclehub/ligature/tracker"
)

type (
	Renderer struct {
		Template *template.Template
		// StepsPerChar is how many steps one character of an arrangement box
		// stands for.
		StepsPerChar int
		// Color enables the styles of the "style" template function. The
		// colors are dropped anyway when the output is not a terminal.
		Color bool

		styles map[string]lipgloss.Style
	}

	GridData struct {
		Title   string
		Headers []string
		Rows    []GridRow
	}

	GridRow struct {
		Index          int
		Active, Cursor bool
		// Style is "active", "cursor" or empty.
		Style string
		Cells []tracker.CellView
	}

	ArrangementData struct {
		Cells       []ArrangementCell
		HasPlayhead bool
		Playhead    float64
	}

	ArrangementCell struct {
		tracker.Cell
		Layers [][]ArrangementBox
	}

	ArrangementBox struct {
		tracker.Box
		Label string
		Pad   int
	}
)

//go:embed templates/*
var templateFS embed.FS

// New returns a new renderer using the default templates
func New() (*Renderer, error) {
	r := &Renderer{StepsPerChar: 1}
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).Funcs(r.funcMap()).ParseFS(templateFS, "templates/*.*")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	r.Template = tmpl
	return r, nil
}

// NewFromTemplates returns a new renderer using the templates of a directory.
// The directory should define the templates "grid.txt" and "arrangement.txt".
func NewFromTemplates(templateDirectory string) (*Renderer, error) {
	r := &Renderer{StepsPerChar: 1}
	globPtrn := filepath.Join(templateDirectory, "*.*")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).Funcs(r.funcMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	r.Template = tmpl
	return r, nil
}

func (r *Renderer) funcMap() template.FuncMap {
	return template.FuncMap{
		// style applies a named style, e.g. {{ .Label | style "missing" }}.
		// Unknown names and a renderer without Color leave the text as is.
		"style": func(name, text string) string {
			if st, ok := r.styles[name]; ok {
				return st.Render(text)
			}
			return text
		},
		"cellStyle": func(kind tracker.CellKind) string {
			if kind == tracker.CellNote {
				return "note"
			}
			return "dim"
		},
	}
}

// makeStyles returns the styles for w, following the color profile of w.
func makeStyles(w io.Writer) map[string]lipgloss.Style {
	lr := lipgloss.NewRenderer(w)
	return map[string]lipgloss.Style{
		"title":    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		"header":   lr.NewStyle().Foreground(lipgloss.Color("14")),
		"active":   lr.NewStyle().Background(lipgloss.Color("4")),
		"cursor":   lr.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		"note":     lr.NewStyle().Foreground(lipgloss.Color("15")),
		"dim":      lr.NewStyle().Foreground(lipgloss.Color("8")),
		"missing":  lr.NewStyle().Foreground(lipgloss.Color("9")),
		"command":  lr.NewStyle().Foreground(lipgloss.Color("10")),
		"playhead": lr.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	}
}

// Grid renders the tracker grid of the model.
func (r *Renderer) Grid(w io.Writer, m *tracker.Model) error {
	return r.execute(w, "grid.txt", MakeGridData(m))
}

// Arrangement renders the arrangement of the model.
func (r *Renderer) Arrangement(w io.Writer, m *tracker.Model) error {
	return r.execute(w, "arrangement.txt", r.MakeArrangementData(m))
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	r.styles = nil
	if r.Color {
		r.styles = makeStyles(w)
	}
	var b bytes.Buffer
	if err := r.Template.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Errorf(`could not execute template "%v": %v`, name, err)
	}
	_, err := b.WriteTo(w)
	return err
}

// MakeGridData collects the cells of the tracker grid.
func MakeGridData(m *tracker.Model) GridData {
	g := m.Grid()
	var data GridData
	if g.Mode() == tracker.PatternMode {
		data.Title = "Pattern " + g.PatternID()
	} else {
		data.Title = "Row " + strconv.Itoa(g.PlaylistRow()+1)
	}
	columns := g.Columns()
	for _, c := range columns {
		data.Headers = append(data.Headers, tracker.HeaderLabel(c.Name))
	}
	active, playing := g.ActiveRow()
	cursor := g.Cursor()
	for row := 0; row < g.MaxDuration(); row++ {
		r := GridRow{Index: row, Active: playing && active == row, Cursor: cursor.Row == row}
		switch {
		case r.Active:
			r.Style = "active"
		case r.Cursor:
			r.Style = "cursor"
		}
		for col := range columns {
			r.Cells = append(r.Cells, g.CellText(col, row))
		}
		data.Rows = append(data.Rows, r)
	}
	return data
}

// MakeArrangementData collects the cells of the arrangement. Boxes are at
// least wide enough for their label.
func (r *Renderer) MakeArrangementData(m *tracker.Model) ArrangementData {
	a := m.Arrangement()
	var data ArrangementData
	data.Playhead, data.HasPlayhead = a.Playhead()
	stepsPerChar := max(r.StepsPerChar, 1)
	for _, c := range a.Cells() {
		cell := ArrangementCell{Cell: c}
		for _, layer := range c.Layers {
			var boxes []ArrangementBox
			for _, b := range layer {
				label := b.ID
				if b.Transposition != 0 {
					label += fmt.Sprintf("(%+d)", b.Transposition)
				}
				if b.Missing {
					label += "?"
				}
				steps := 0
				if pps := m.Preferences().Arrangement.PixelsPerStep; pps > 0 {
					steps = int(b.Width / pps)
				}
				boxes = append(boxes, ArrangementBox{Box: b, Label: label, Pad: max(steps/stepsPerChar-len(label), 0)})
			}
			cell.Layers = append(cell.Layers, boxes)
		}
		data.Cells = append(data.Cells, cell)
	}
	return data
}

package tracker

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/chroniclehub/ligature"
)

type (
	// ArrangementModel is the playlist view of the model: the rows of the
	// playlist laid out left to right as cells.
	ArrangementModel Model

	// Cell is the layout of one playlist row. X is relative to the start of
	// the arrangement, the X of the boxes relative to the cell.
	Cell struct {
		Row       int
		X, Width  float64
		IsCommand bool
		Command   string
		Layers    [][]Box
	}

	// Box is a chain item drawn inside a cell, sized by the duration of its
	// pattern.
	Box struct {
		ID            string
		Transposition int
		X, Width      float64
		Missing       bool
	}

	rowAction struct {
		*ArrangementModel
		row, layer, item int
	}

	cloneRow   rowAction
	deleteRow  rowAction
	retarget   rowAction
	removeItem rowAction
	appendItem rowAction
	addLayer   rowAction
	addSection ArrangementModel
)

// MinCellSteps is the narrowest cell, in steps.
const MinCellSteps = 16

func (m *Model) Arrangement() *ArrangementModel { return (*ArrangementModel)(m) }

// Cells lays out the playlist of the last parsed track.
func (m *ArrangementModel) Cells() []Cell {
	pps := m.prefs.Arrangement.PixelsPerStep
	ret := make([]Cell, 0, len(m.track.Playlist))
	x := m.prefs.Arrangement.LeftPadding
	for i := range m.track.Playlist {
		item := &m.track.Playlist[i]
		steps := max(MinCellSteps, item.Duration(m.track))
		cell := Cell{Row: i, X: x, Width: float64(steps)*pps + m.prefs.Arrangement.CellPadding}
		if item.Type == ligature.CommandItem {
			cell.IsCommand = true
			cell.Command = item.Command
		}
		for li := range item.Layers {
			var boxes []Box
			for _, seg := range item.Layers[li].Segments(m.track) {
				boxes = append(boxes, Box{
					ID:            seg.PatternID,
					Transposition: seg.Transposition,
					X:             float64(seg.Start) * pps,
					Width:         float64(seg.End-seg.Start) * pps,
					Missing:       seg.Missing,
				})
			}
			cell.Layers = append(cell.Layers, boxes)
		}
		ret = append(ret, cell)
		x += cell.Width
	}
	return ret
}

// Playhead returns the x coordinate of the playhead, or false when the
// transport is not running.
func (m *ArrangementModel) Playhead() (float64, bool) {
	if !m.playing {
		return 0, false
	}
	return float64(m.arrangementStep)*m.prefs.Arrangement.PixelsPerStep + m.prefs.Arrangement.LeftPadding, true
}

// SelectRow shows the playlist row in the tracker grid.
func (m *ArrangementModel) SelectRow(row int) { (*Model)(m).Grid().SetRow(row) }

func (m *ArrangementModel) CloneRow(row int) Action {
	return MakeAction(&cloneRow{ArrangementModel: m, row: row})
}
func (m *ArrangementModel) DeleteRow(row int) Action {
	return MakeAction(&deleteRow{ArrangementModel: m, row: row})
}
func (m *ArrangementModel) RetargetItem(row, layer, item int) Action {
	return MakeAction(&retarget{ArrangementModel: m, row: row, layer: layer, item: item})
}
func (m *ArrangementModel) RemoveItem(row, layer, item int) Action {
	return MakeAction(&removeItem{ArrangementModel: m, row: row, layer: layer, item: item})
}
func (m *ArrangementModel) AppendItem(row, layer int) Action {
	return MakeAction(&appendItem{ArrangementModel: m, row: row, layer: layer})
}
func (m *ArrangementModel) AddLayer(row int) Action {
	return MakeAction(&addLayer{ArrangementModel: m, row: row})
}
func (m *ArrangementModel) AddSection() Action { return MakeAction((*addSection)(m)) }

func (a *rowAction) model() *Model { return (*Model)(a.ArrangementModel) }

func (a *rowAction) rowOK() bool {
	return a.row >= 0 && a.row < len(a.track.Playlist)
}

func (a *rowAction) patternRowOK() bool {
	return a.rowOK() && a.track.Playlist[a.row].Type == ligature.PatternItem
}

func (a *rowAction) itemOK() bool {
	if !a.patternRowOK() || a.layer < 0 || a.layer >= len(a.track.Playlist[a.row].Layers) {
		return false
	}
	return a.item >= 0 && a.item < len(a.track.Playlist[a.row].Layers[a.layer].Items)
}

// promptID asks for a pattern id. ok is false if the user cancelled or typed
// something that cannot be a pattern id.
func (a *rowAction) promptID(title, initial string) (string, bool) {
	id, ok := a.dialog.Prompt(title, initial)
	if !ok {
		return "", false
	}
	id = strings.TrimSpace(id)
	if !ligature.ValidPatternID(id) {
		a.model().Alerts().Add("Invalid pattern id "+strconv.Quote(id), Warning)
		return "", false
	}
	return id, true
}

// CloneRow

func (a *cloneRow) Enabled() bool { return (*rowAction)(a).rowOK() }
func (a *cloneRow) Do() {
	defer (*rowAction)(a).model().change("CloneRow")()
	p := a.scratch.Playlist
	a.scratch.Playlist = slices.Insert(p, a.row+1, p[a.row].Copy())
}

// DeleteRow

func (a *deleteRow) Enabled() bool { return (*rowAction)(a).rowOK() }
func (a *deleteRow) Do() {
	if a.prefs.ConfirmDelete && !a.dialog.Confirm(fmt.Sprintf("Delete playlist row %d?", a.row+1)) {
		return
	}
	defer (*rowAction)(a).model().change("DeleteRow")()
	a.scratch.Playlist = slices.Delete(a.scratch.Playlist, a.row, a.row+1)
}

// RetargetItem

func (a *retarget) Enabled() bool { return (*rowAction)(a).itemOK() }
func (a *retarget) Do() {
	r := (*rowAction)(a)
	current := a.track.Playlist[a.row].Layers[a.layer].Items[a.item].ID
	id, ok := r.promptID("Pattern id", current)
	if !ok || id == current {
		return
	}
	defer r.model().change("RetargetItem")()
	a.scratch.Playlist[a.row].Layers[a.layer].Items[a.item].ID = id
}

// RemoveItem removes a chain item. A layer left empty is removed too, but the
// row is kept even if it has no layers left.

func (a *removeItem) Enabled() bool { return (*rowAction)(a).itemOK() }
func (a *removeItem) Do() {
	defer (*rowAction)(a).model().change("RemoveItem")()
	row := &a.scratch.Playlist[a.row]
	layer := &row.Layers[a.layer]
	layer.Items = slices.Delete(layer.Items, a.item, a.item+1)
	if len(layer.Items) == 0 {
		row.Layers = slices.Delete(row.Layers, a.layer, a.layer+1)
	}
}

// AppendItem

func (a *appendItem) Enabled() bool {
	r := (*rowAction)(a)
	return r.patternRowOK() && a.layer >= 0 && a.layer < len(a.track.Playlist[a.row].Layers)
}
func (a *appendItem) Do() {
	r := (*rowAction)(a)
	id, ok := r.promptID("Pattern id", "")
	if !ok {
		return
	}
	defer r.model().change("AppendItem")()
	layer := &a.scratch.Playlist[a.row].Layers[a.layer]
	layer.Items = append(layer.Items, ligature.ChainItem{ID: id})
}

// AddLayer

func (a *addLayer) Enabled() bool { return (*rowAction)(a).patternRowOK() }
func (a *addLayer) Do() {
	r := (*rowAction)(a)
	id, ok := r.promptID("Pattern id", "")
	if !ok {
		return
	}
	defer r.model().change("AddLayer")()
	row := &a.scratch.Playlist[a.row]
	row.Layers = append(row.Layers, ligature.Layer{Items: []ligature.ChainItem{{ID: id}}})
}

// AddSection appends a row playing the first pattern of the track.

func (m *addSection) Do() {
	defer (*Model)(m).change("AddSection")()
	m.scratch.Playlist = append(m.scratch.Playlist, ligature.NewPatternItem(m.scratch.FirstPatternID()))
}

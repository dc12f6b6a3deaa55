package tracker_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/chroniclehub/ligature"
	"github.com/chroniclehub/ligature/tracker"
)

func playlistText(m *tracker.Model) []string {
	var ret []string
	for i := range m.Track().Playlist {
		ret = append(ret, ligature.FormatPlaylistItem(&m.Track().Playlist[i]))
	}
	return ret
}

func TestCells(t *testing.T) {
	model := newTestModel(t, fuzzTrack)
	cells := model.Arrangement().Cells()
	want := []tracker.Cell{
		{Row: 0, X: 8, Width: 76, Layers: [][]tracker.Box{
			{{ID: "Main", X: 0, Width: 64}},
		}},
		{Row: 1, X: 84, Width: 92, Layers: [][]tracker.Box{
			{{ID: "Main", X: 0, Width: 64}, {ID: "Fill", X: 64, Width: 16}},
			{{ID: "Fill", Transposition: 2, X: 0, Width: 16}},
		}},
		{Row: 2, X: 176, Width: 76, IsCommand: true, Command: "tempo 120"},
	}
	if !reflect.DeepEqual(cells, want) {
		t.Errorf("Cells() =\n%+v\nwant\n%+v", cells, want)
	}
}

func TestCellsMissingPattern(t *testing.T) {
	model := newTestModel(t, "[PATTERN: Main]\nDuration: 4\n\n[PLAYLIST]\nMain, Gone\n")
	cells := model.Arrangement().Cells()
	if len(cells) != 1 || len(cells[0].Layers) != 1 || len(cells[0].Layers[0]) != 2 {
		t.Fatalf("Cells() = %+v", cells)
	}
	box := cells[0].Layers[0][1]
	if !box.Missing || box.X != 16 || box.Width != float64(ligature.MissingPatternDuration)*4 {
		t.Errorf("missing pattern box = %+v", box)
	}
	if got := cells[0].Width; got != 20*4+12 {
		t.Errorf("cell width = %v, want %v", got, 20*4+12)
	}
}

func TestPlayhead(t *testing.T) {
	broker := tracker.NewBroker()
	model := tracker.NewModel(broker, nil, &recordingPlayer{}, tracker.DefaultPreferences(), "")
	if _, ok := model.Arrangement().Playhead(); ok {
		t.Errorf("no playhead when stopped")
	}
	model.Play().Song().Do()
	broker.ArrangementClock <- tracker.ClockTick{Elapsed: time.Second, Running: true}
	model.Update()
	x, ok := model.Arrangement().Playhead()
	// 1 s at 120 bpm and grid 4 is step 8
	if !ok || x != 8*4+8 {
		t.Errorf("Playhead() = %v, %v, want %v, true", x, ok, 8*4+8)
	}
}

func TestEmptyLayerCascade(t *testing.T) {
	model := newTestModel(t, fuzzTrack)
	a := model.Arrangement()
	a.RemoveItem(1, 1, 0).Do()
	if got, want := playlistText(model), []string{"Main", "Main, Fill", "!tempo 120"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("playlist = %q, want %q", got, want)
	}
	a.RemoveItem(1, 0, 0).Do()
	a.RemoveItem(1, 0, 0).Do()
	if got, want := playlistText(model), []string{"Main", ligature.EmptyRow, "!tempo 120"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("playlist = %q, want %q", got, want)
	}
	if a.RemoveItem(1, 0, 0).Enabled() {
		t.Errorf("RemoveItem should be disabled on a row without layers")
	}
}

func TestRowActions(t *testing.T) {
	tests := []struct {
		name   string
		dialog tracker.Dialog
		do     func(a *tracker.ArrangementModel)
		want   []string
	}{
		{"CloneRow", nil, func(a *tracker.ArrangementModel) { a.CloneRow(1).Do() },
			[]string{"Main", "Main, Fill | Fill(+2)", "Main, Fill | Fill(+2)", "!tempo 120"}},
		{"DeleteRow", tracker.FixedDialog{Accept: true}, func(a *tracker.ArrangementModel) { a.DeleteRow(0).Do() },
			[]string{"Main, Fill | Fill(+2)", "!tempo 120"}},
		{"DeleteRowCancelled", tracker.NullDialog{}, func(a *tracker.ArrangementModel) { a.DeleteRow(0).Do() },
			[]string{"Main", "Main, Fill | Fill(+2)", "!tempo 120"}},
		{"RetargetItem", tracker.FixedDialog{Value: " Fill ", Accept: true}, func(a *tracker.ArrangementModel) { a.RetargetItem(0, 0, 0).Do() },
			[]string{"Fill", "Main, Fill | Fill(+2)", "!tempo 120"}},
		{"RetargetItemKeepsTransposition", tracker.FixedDialog{Value: "Main", Accept: true}, func(a *tracker.ArrangementModel) { a.RetargetItem(1, 1, 0).Do() },
			[]string{"Main", "Main, Fill | Main(+2)", "!tempo 120"}},
		{"RetargetItemInvalidID", tracker.FixedDialog{Value: "no spaces", Accept: true}, func(a *tracker.ArrangementModel) { a.RetargetItem(0, 0, 0).Do() },
			[]string{"Main", "Main, Fill | Fill(+2)", "!tempo 120"}},
		{"RetargetItemCancelled", tracker.NullDialog{}, func(a *tracker.ArrangementModel) { a.RetargetItem(0, 0, 0).Do() },
			[]string{"Main", "Main, Fill | Fill(+2)", "!tempo 120"}},
		{"AppendItem", tracker.FixedDialog{Value: "Later", Accept: true}, func(a *tracker.ArrangementModel) { a.AppendItem(0, 0).Do() },
			[]string{"Main, Later", "Main, Fill | Fill(+2)", "!tempo 120"}},
		{"AddLayer", tracker.FixedDialog{Value: "Fill", Accept: true}, func(a *tracker.ArrangementModel) { a.AddLayer(0).Do() },
			[]string{"Main | Fill", "Main, Fill | Fill(+2)", "!tempo 120"}},
		{"AddLayerOnCommand", tracker.FixedDialog{Value: "Fill", Accept: true}, func(a *tracker.ArrangementModel) { a.AddLayer(2).Do() },
			[]string{"Main", "Main, Fill | Fill(+2)", "!tempo 120"}},
		{"AddSection", nil, func(a *tracker.ArrangementModel) { a.AddSection().Do() },
			[]string{"Main", "Main, Fill | Fill(+2)", "!tempo 120", "Main"}},
		{"CloneRowOutOfRange", nil, func(a *tracker.ArrangementModel) { a.CloneRow(7).Do() },
			[]string{"Main", "Main, Fill | Fill(+2)", "!tempo 120"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := newTestModelWith(t, fuzzTrack, tt.dialog, nil)
			tt.do(model.Arrangement())
			if got := playlistText(model); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("playlist = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddSectionWithoutPatterns(t *testing.T) {
	model := newTestModel(t, "[CONFIG]\nBPM: 100\n")
	model.Arrangement().AddSection().Do()
	if got, want := playlistText(model), []string{"Main"}; !reflect.DeepEqual(got, want) {
		t.Errorf("playlist = %q, want %q", got, want)
	}
}

func TestArrangementEditIsUndoable(t *testing.T) {
	model := newTestModel(t, fuzzTrack)
	model.Arrangement().CloneRow(0).Do()
	model.History().Undo().Do()
	if model.Text() != fuzzTrack {
		t.Errorf("undo should restore the text exactly, got\n%s", model.Text())
	}
	model.History().Redo().Do()
	if got := len(model.Track().Playlist); got != 4 {
		t.Errorf("redo should restore the cloned row, got %d rows", got)
	}
}

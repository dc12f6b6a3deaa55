package tracker_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/chroniclehub/ligature"
	"github.com/chroniclehub/ligature/tracker"
)

const scenarioTrack = `[CONFIG]
Grid: 4

[PATTERN: Main]
Duration: 16
Piano | 0 4 1 ; 4 4 3

[PLAYLIST]
Main
`

func TestScenario(t *testing.T) {
	model := newTestModel(t, scenarioTrack)
	reparsed, err := ligature.Parse(ligature.Serialize(model.Track()), nil)
	if err != nil {
		t.Fatalf("serialized track does not parse: %v", err)
	}
	if !reflect.DeepEqual(reparsed, model.Track()) {
		t.Errorf("round trip changed the track:\n%+v\n%+v", reparsed, model.Track())
	}
	g := model.Grid()
	g.SetPattern("Main")
	if got := g.MaxDuration(); got != 16 {
		t.Fatalf("MaxDuration() = %d, want 16", got)
	}
	if cols := g.Columns(); len(cols) != 1 || cols[0].Name != "Piano" {
		t.Fatalf("Columns() = %+v, want one Piano column", cols)
	}
	for row := 0; row < 16; row++ {
		want := tracker.CellEmpty
		switch {
		case row == 0 || row == 4:
			want = tracker.CellNote
		case row < 8:
			want = tracker.CellSustain
		}
		if got := g.Classify(0, row); got != want {
			t.Errorf("Classify(0, %d) = %v, want %v", row, got, want)
		}
	}
	if got := g.CellText(0, 0); got.Note != "C4" || got.Mod != tracker.EmptyModGlyph || got.FX != tracker.EmptyFXGlyph {
		t.Errorf("CellText(0, 0) = %+v", got)
	}
	if got := g.CellText(0, 4).Note; got != "E4" {
		t.Errorf("CellText(0, 4).Note = %q, want E4", got)
	}
	if got := g.CellText(0, 2).Note; got != tracker.SustainGlyph {
		t.Errorf("CellText(0, 2).Note = %q, want %q", got, tracker.SustainGlyph)
	}
	if got := g.CellText(0, 12).Note; got != tracker.EmptyNoteGlyph {
		t.Errorf("CellText(0, 12).Note = %q, want %q", got, tracker.EmptyNoteGlyph)
	}
}

func TestContextColumns(t *testing.T) {
	model := newTestModel(t, fuzzTrack)
	g := model.Grid()
	g.SetRow(1)
	if got := g.MaxDuration(); got != 20 {
		t.Fatalf("MaxDuration() = %d, want 20", got)
	}
	var names []string
	for _, c := range g.Columns() {
		names = append(names, c.Name)
	}
	if want := []string{"L0:Bass", "L0:Piano", "L1:Piano"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("column names = %v, want %v", names, want)
	}
	piano := g.Columns()[1]
	for _, row := range []int{0, 4, 16, 18} {
		if piano.Events[row] == nil {
			t.Errorf("L0:Piano should have an event at row %d", row)
		}
	}
	if got := g.Classify(1, 19); got != tracker.CellSustain {
		t.Errorf("Classify(1, 19) = %v, want sustain", got)
	}
	if got := g.Classify(2, 5); got != tracker.CellEmpty {
		t.Errorf("Classify(2, 5) = %v, want empty", got)
	}
}

func TestResolve(t *testing.T) {
	model := newTestModel(t, fuzzTrack)
	g := model.Grid()
	g.SetRow(1)
	tests := []struct {
		col, row int
		want     tracker.CellAddress
		ok       bool
	}{
		{1, 3, tracker.CellAddress{PatternID: "Main", LocalTime: 3, Lane: "Piano"}, true},
		{1, 17, tracker.CellAddress{PatternID: "Fill", LocalTime: 1, Lane: "Piano"}, true},
		{0, 19, tracker.CellAddress{PatternID: "Fill", LocalTime: 3, Lane: "Bass"}, true},
		{2, 3, tracker.CellAddress{PatternID: "Fill", LocalTime: 3, Lane: "Piano"}, true},
		{2, 4, tracker.CellAddress{}, false},
		{1, 20, tracker.CellAddress{}, false},
		{3, 0, tracker.CellAddress{}, false},
	}
	for _, tt := range tests {
		got, ok := g.Resolve(tt.col, tt.row)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Resolve(%d, %d) = %+v, %v, want %+v, %v", tt.col, tt.row, got, ok, tt.want, tt.ok)
		}
	}
	g.SetPattern("Fill")
	if got, ok := g.Resolve(0, 2); !ok || got != (tracker.CellAddress{PatternID: "Fill", LocalTime: 2, Lane: "Piano"}) {
		t.Errorf("Resolve in pattern mode = %+v, %v", got, ok)
	}
}

func TestCommandRowHasNoColumns(t *testing.T) {
	model := newTestModel(t, fuzzTrack)
	model.Grid().SetRow(2)
	if cols := model.Grid().Columns(); len(cols) != 0 {
		t.Errorf("command row should have no columns, got %d", len(cols))
	}
	model.Grid().SetRow(99)
	if got := model.Grid().PlaylistRow(); got != 2 {
		t.Errorf("PlaylistRow() = %d, want it clamped to 2", got)
	}
}

func TestUnresolvableNote(t *testing.T) {
	model := newTestModel(t, "[PATTERN: Main]\nDuration: 4\nPiano | 0 1 1'''''''\n")
	model.Grid().SetPattern("Main")
	if got := model.Grid().CellText(0, 0).Note; got != "?" {
		t.Errorf("out of range note shown as %q, want ?", got)
	}
}

func TestHeaderLabel(t *testing.T) {
	tests := []struct{ lane, want string }{
		{"Piano", "Piano"},
		{"Drums_#1", "Drums (1)"},
		{"Piano_#22", "Piano (22)"},
	}
	for _, tt := range tests {
		if got := tracker.HeaderLabel(tt.lane); got != tt.want {
			t.Errorf("HeaderLabel(%q) = %q, want %q", tt.lane, got, tt.want)
		}
	}
}

func TestAddLane(t *testing.T) {
	model := newTestModelWith(t, scenarioTrack, tracker.FixedDialog{Value: "Drums_#1", Accept: true}, nil)
	if model.Grid().AddLane().Enabled() {
		t.Errorf("AddLane should be disabled in context mode")
	}
	model.Grid().SetPattern("Main")
	model.Grid().AddLane().Do()
	p, _ := model.Track().Pattern("Main")
	if _, ok := p.Tracks["Drums_#1"]; !ok {
		t.Fatalf("lane was not added: %v", p.Lanes())
	}
	if got := len(model.Grid().Columns()); got != 2 {
		t.Errorf("got %d columns, want 2", got)
	}
}

func TestActiveRow(t *testing.T) {
	broker := tracker.NewBroker()
	model := tracker.NewModel(broker, nil, &recordingPlayer{}, tracker.DefaultPreferences(), "")
	model.SetText(fuzzTrack)
	model.Grid().SetPattern("Fill")
	model.Play().Audition().Do()
	model.Follow().Bool().Set(true)
	// 3.125 s at 120 bpm and grid 4 is step 25, row 1 of a 4 step pattern
	broker.TrackerClock <- tracker.ClockTick{Elapsed: 3125 * time.Millisecond, Running: true}
	model.Update()
	row, ok := model.Grid().ActiveRow()
	if !ok || row != 1 {
		t.Errorf("ActiveRow() = %d, %v, want 1, true", row, ok)
	}
	if got := model.Editor().Cursor().Row; got != 1 {
		t.Errorf("follow mode should move the cursor to row 1, got %d", got)
	}
}

func TestActiveRowSong(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		row     int
		ok      bool
	}{
		// 8 steps per second; the shown row spans steps 16 to 35
		{0, 0, false},
		{1875 * time.Millisecond, 0, false},
		{2 * time.Second, 0, true},
		{3 * time.Second, 8, true},
		{5 * time.Second, 0, false},
	}
	for _, tt := range tests {
		broker := tracker.NewBroker()
		model := tracker.NewModel(broker, nil, &recordingPlayer{}, tracker.DefaultPreferences(), "")
		model.SetText(fuzzTrack)
		model.Grid().SetRow(1)
		model.Play().Song().Do()
		broker.TrackerClock <- tracker.ClockTick{Elapsed: tt.elapsed, Running: true}
		model.Update()
		if row, ok := model.Grid().ActiveRow(); row != tt.row || ok != tt.ok {
			t.Errorf("%v: ActiveRow() = %d, %v, want %d, %v", tt.elapsed, row, ok, tt.row, tt.ok)
		}
	}
}

func TestActiveRowSongInPatternMode(t *testing.T) {
	broker := tracker.NewBroker()
	model := tracker.NewModel(broker, nil, &recordingPlayer{}, tracker.DefaultPreferences(), "")
	model.SetText(fuzzTrack)
	model.Grid().SetPattern("Fill")
	model.Play().Song().Do()
	broker.TrackerClock <- tracker.ClockTick{Elapsed: time.Second, Running: true}
	model.Update()
	if _, ok := model.Grid().ActiveRow(); ok {
		t.Errorf("song playback should not mark a row of the pattern shown alone")
	}
}

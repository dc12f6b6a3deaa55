package render_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/chroniclehub/ligature/render"
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

const layeredTrack = `[PATTERN: Main]
Duration: 16
Bass | 0 4 1, ; 8 4 5,

[PATTERN: Fill]
Duration: 4
Piano | 0 1 1 ; 2 2 n3

[PLAYLIST]
Main
Main, Fill | Fill(+2)
!tempo 120
`

func newModel(t *testing.T, broker *tracker.Broker, text string) *tracker.Model {
	t.Helper()
	model := tracker.NewModel(broker, nil, nil, tracker.DefaultPreferences(), "")
	model.SetText(text)
	if err := model.ParseError(); err != nil {
		t.Fatalf("test track does not parse: %v", err)
	}
	return model
}

// lines splits the output to lines, without the trailing spaces of the
// padded columns.
func lines(s string) []string {
	ret := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i := range ret {
		ret[i] = strings.TrimRight(ret[i], " ")
	}
	return ret
}

func TestGrid(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	model := newModel(t, nil, scenarioTrack)
	model.Grid().SetPattern("Main")
	var b bytes.Buffer
	if err := r.Grid(&b, model); err != nil {
		t.Fatalf("Grid failed: %v", err)
	}
	got := lines(b.String())
	if len(got) != 2+16 {
		t.Fatalf("got %d lines, want a title, a header and 16 rows:\n%s", len(got), b.String())
	}
	want := map[int]string{
		0:  "Pattern Main",
		1:  "     Piano",
		2:  "*  0 C4     ..  ...",
		3:  "   1 |      ..  ...",
		6:  "   4 E4     ..  ...",
		17: "  15 ...    ..  ...",
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("line %d = %q, want %q", i, got[i], w)
		}
	}
}

func TestGridActiveRow(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	broker := tracker.NewBroker()
	model := newModel(t, broker, scenarioTrack)
	model.Play().Song().Do()
	// 0.5 s at 120 bpm and grid 4 is step 4
	broker.TrackerClock <- tracker.ClockTick{Elapsed: 500 * time.Millisecond, Running: true}
	model.Update()
	data := render.MakeGridData(model)
	if data.Title != "Row 1" {
		t.Errorf("Title = %q, want Row 1", data.Title)
	}
	if want := []string{"L0:Piano"}; !reflect.DeepEqual(data.Headers, want) {
		t.Errorf("Headers = %q, want %q", data.Headers, want)
	}
	for _, row := range data.Rows {
		if row.Active != (row.Index == 4) {
			t.Errorf("row %d: Active = %v", row.Index, row.Active)
		}
	}
	var b bytes.Buffer
	if err := r.Grid(&b, model); err != nil {
		t.Fatalf("Grid failed: %v", err)
	}
	if got := lines(b.String())[2+4]; got != ">  4 E4     ..  ..." {
		t.Errorf("active row = %q", got)
	}
}

func TestArrangement(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r.StepsPerChar = 4
	model := newModel(t, nil, layeredTrack)
	var b bytes.Buffer
	if err := r.Arrangement(&b, model); err != nil {
		t.Fatalf("Arrangement failed: %v", err)
	}
	want := []string{
		"  1 x=8      w=76",
		"    L0 [Main]",
		"  2 x=84     w=92",
		"    L0 [Main][Fill]",
		"    L1 [Fill(+2)]",
		"  3 x=176    w=76     !tempo 120",
	}
	if got := lines(b.String()); !reflect.DeepEqual(got, want) {
		t.Errorf("Arrangement() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestArrangementPadding(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	data := r.MakeArrangementData(newModel(t, nil, layeredTrack))
	box := data.Cells[0].Layers[0][0]
	// 16 steps, one character each
	if box.Label != "Main" || box.Pad != 12 {
		t.Errorf("box = %q padded by %d, want Main padded by 12", box.Label, box.Pad)
	}
	if box := data.Cells[1].Layers[1][0]; box.Label != "Fill(+2)" || box.Pad != 0 {
		t.Errorf("box = %q padded by %d, want Fill(+2) padded by 0", box.Label, box.Pad)
	}
}

func TestArrangementMissingAndEmpty(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r.StepsPerChar = 4
	model := newModel(t, nil, "[PATTERN: Main]\nDuration: 4\n\n[PLAYLIST]\nMain, Gone\n-\n")
	var b bytes.Buffer
	if err := r.Arrangement(&b, model); err != nil {
		t.Fatalf("Arrangement failed: %v", err)
	}
	got := lines(b.String())
	if len(got) != 3 || got[1] != "    L0 [Main][Gone?]" || !strings.HasSuffix(got[2], " -") {
		t.Errorf("Arrangement() =\n%s", b.String())
	}
}

func TestArrangementPlayhead(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	broker := tracker.NewBroker()
	model := newModel(t, broker, layeredTrack)
	model.Play().Song().Do()
	broker.ArrangementClock <- tracker.ClockTick{Elapsed: time.Second, Running: true}
	model.Update()
	var b bytes.Buffer
	if err := r.Arrangement(&b, model); err != nil {
		t.Fatalf("Arrangement failed: %v", err)
	}
	got := lines(b.String())
	if last := got[len(got)-1]; last != "playhead x=40" {
		t.Errorf("last line = %q, want playhead x=40", last)
	}
}

func TestNewFromTemplates(t *testing.T) {
	dir := t.TempDir()
	tmpl := `{{ define "grid.txt" }}{{ .Title | upper }}{{ end }}{{ define "arrangement.txt" }}{{ len .Cells }}{{ end }}`
	if err := os.WriteFile(filepath.Join(dir, "custom.txt"), []byte(tmpl), 0644); err != nil {
		t.Fatalf("could not write template: %v", err)
	}
	r, err := render.NewFromTemplates(dir)
	if err != nil {
		t.Fatalf("NewFromTemplates failed: %v", err)
	}
	model := newModel(t, nil, layeredTrack)
	var b bytes.Buffer
	if err := r.Grid(&b, model); err != nil {
		t.Fatalf("Grid failed: %v", err)
	}
	if b.String() != "ROW 1" {
		t.Errorf("Grid() = %q, want ROW 1", b.String())
	}
	b.Reset()
	if err := r.Arrangement(&b, model); err != nil {
		t.Fatalf("Arrangement failed: %v", err)
	}
	if b.String() != "3" {
		t.Errorf("Arrangement() = %q, want 3", b.String())
	}
}

func TestNewFromMissingDirectory(t *testing.T) {
	if _, err := render.NewFromTemplates(filepath.Join(t.TempDir(), "nothing")); err == nil {
		t.Errorf("expected an error for a directory without templates")
	}
}

func TestStyleWithoutColor(t *testing.T) {
	dir := t.TempDir()
	tmpl := `{{ define "grid.txt" }}{{ .Title | style "title" }}{{ range .Rows }}{{ range .Cells }}|{{ .Note | style (cellStyle .Kind) }}{{ end }}{{ end }}{{ end }}` +
		`{{ define "arrangement.txt" }}{{ "x" | style "nothing" }}{{ end }}`
	if err := os.WriteFile(filepath.Join(dir, "custom.txt"), []byte(tmpl), 0644); err != nil {
		t.Fatalf("could not write template: %v", err)
	}
	r, err := render.NewFromTemplates(dir)
	if err != nil {
		t.Fatalf("NewFromTemplates failed: %v", err)
	}
	model := newModel(t, nil, "[PATTERN: Main]\nDuration: 2\nPiano | 0 1 1\n\n[PLAYLIST]\nMain\n")
	var b bytes.Buffer
	if err := r.Grid(&b, model); err != nil {
		t.Fatalf("Grid failed: %v", err)
	}
	if want := "Row 1|C4|" + tracker.EmptyNoteGlyph; b.String() != want {
		t.Errorf("Grid() = %q, want %q", b.String(), want)
	}
	b.Reset()
	if err := r.Arrangement(&b, model); err != nil {
		t.Fatalf("Arrangement failed: %v", err)
	}
	if b.String() != "x" {
		t.Errorf("Arrangement() = %q, want x", b.String())
	}
}

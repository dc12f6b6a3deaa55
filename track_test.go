package ligature_test

import (
	"reflect"
	"testing"

	"github.com/chroniclehub/ligature"
)

const rescaleText = `[CONFIG]
Grid: 4

[PATTERN: A]
Duration: 5
Lead | 0 1 1 ; 1 0.5 2 ; 2.25 0.75 3 ; 3.5 1.5 4

[PATTERN: B]
Duration: 16
Bass | 0 16 1
`

func TestSetGridInverse(t *testing.T) {
	for _, grids := range [][2]int{{4, 8}, {4, 3}, {4, 6}, {4, 1}} {
		original, err := ligature.Parse(rescaleText, nil)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		track := original.Copy()
		if !track.SetGrid(grids[1]) {
			t.Fatalf("SetGrid(%d) reported no change", grids[1])
		}
		if track.Config.Grid != grids[1] {
			t.Errorf("grid = %d, expected %d", track.Config.Grid, grids[1])
		}
		if !track.SetGrid(grids[0]) {
			t.Fatalf("SetGrid(%d) reported no change", grids[0])
		}
		for i := range original.Patterns {
			for lane, events := range original.Patterns[i].Tracks {
				if got := track.Patterns[i].Tracks[lane]; !reflect.DeepEqual(got, events) {
					t.Errorf("%d -> %d -> %d: lane %s changed, got %v expected %v", grids[0], grids[1], grids[0], lane, got, events)
				}
			}
		}
		if d, _ := track.PatternDuration("B"); d != 16 {
			t.Errorf("%d -> %d -> %d: duration of B = %d", grids[0], grids[1], grids[0], d)
		}
	}
}

func TestSetGridRoundsDurationOnly(t *testing.T) {
	track, err := ligature.Parse(rescaleText, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	track.SetGrid(3)
	a, _ := track.Pattern("A")
	if a.Duration != 4 {
		t.Errorf("duration 5 at grid 4 should become round(3.75) = 4, got %d", a.Duration)
	}
	e := a.Tracks["Lead"][1]
	if e.Time != 0.75 || e.Duration != 0.375 {
		t.Errorf("event times and durations should not be rounded, got time %v duration %v", e.Time, e.Duration)
	}
	if track.SetGrid(3) || track.SetGrid(0) || track.SetGrid(-2) {
		t.Errorf("SetGrid should refuse unchanged or non-positive grids")
	}
}

func TestLayerSegments(t *testing.T) {
	track, err := ligature.Parse("[PATTERN: A]\nDuration: 8\n[PATTERN: B]\nDuration: 4\n[PLAYLIST]\nA, Missing, B(+3) | B\n", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	layer := track.Playlist[0].Layers[0]
	expected := []ligature.Segment{
		{Start: 0, End: 8, PatternID: "A"},
		{Start: 8, End: 24, PatternID: "Missing", Missing: true},
		{Start: 24, End: 28, PatternID: "B", Transposition: 3},
	}
	if got := layer.Segments(track); !reflect.DeepEqual(got, expected) {
		t.Errorf("segments = %+v, expected %+v", got, expected)
	}
	if d := track.Playlist[0].Duration(track); d != 28 {
		t.Errorf("row duration should be the longest layer, got %d", d)
	}
	if s, ok := ligature.SegmentAt(expected, 10); !ok || s.PatternID != "Missing" {
		t.Errorf("SegmentAt(10) = %+v, %v", s, ok)
	}
	if _, ok := ligature.SegmentAt(expected, 28); ok {
		t.Errorf("SegmentAt past the end should fail")
	}
}

func TestEventIdentity(t *testing.T) {
	track, err := ligature.Parse("[PATTERN: A]\nLead | 3 1 1 ; 5 1 2\n", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	p, _ := track.Pattern("A")
	if i := p.FindEvent("Lead", 3.004); i != 0 {
		t.Errorf("3.004 should match the event at 3, got index %d", i)
	}
	if i := p.FindEvent("Lead", 3.02); i != -1 {
		t.Errorf("3.02 should not match any event, got index %d", i)
	}
	e, created := p.Event("Lead", 3.004)
	if created || e.Time != 3 {
		t.Errorf("Event(3.004) should return the existing event, got %+v created=%v", e, created)
	}
	e, created = p.Event("Lead", 4)
	if !created || e.Duration != 1 {
		t.Errorf("Event(4) should create a new event, got %+v created=%v", e, created)
	}
	p.SortLane("Lead")
	var times []float64
	for _, e := range p.Tracks["Lead"] {
		times = append(times, e.Time)
	}
	if !reflect.DeepEqual(times, []float64{3, 4, 5}) {
		t.Errorf("lane not sorted: %v", times)
	}
	if !p.DeleteEvent("Lead", 5.001) || p.DeleteEvent("Lead", 5) {
		t.Errorf("DeleteEvent should remove the event exactly once")
	}
}

func TestCopyIsDeep(t *testing.T) {
	track, err := ligature.Parse(rescaleText+"\n[PLAYLIST]\nA | B\n", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	c := track.Copy()
	p, _ := c.Pattern("A")
	p.Tracks["Lead"][0].Notes[0].Degree = 7
	p.Tracks["Lead"] = nil
	c.Playlist[0].Layers[0].Items[0].ID = "Z"
	orig, _ := track.Pattern("A")
	if len(orig.Tracks["Lead"]) != 4 || orig.Tracks["Lead"][0].Notes[0].Degree != 1 {
		t.Errorf("modifying the copy changed the original pattern")
	}
	if track.Playlist[0].Layers[0].Items[0].ID != "A" {
		t.Errorf("modifying the copy changed the original playlist")
	}
}

package ligature_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/chroniclehub/ligature"
)

func TestResolveNote(t *testing.T) {
	tests := []struct {
		degree      int
		root, mode  string
		octaveShift int
		accidental  int
		isNatural   bool
		expected    string
	}{
		{1, "C", "Major", 0, 0, false, "C4"},
		{3, "C", "major", 0, 0, false, "E4"},
		{8, "C", "Major", 0, 0, false, "C5"},
		{7, "C", "Major", -1, -1, false, "Bb3"},
		{4, "C", "Major", 0, 1, false, "F#4"},
		{3, "C", "Major", 0, 1, true, "E4"},
		{1, "F#", "Minor", 0, 0, false, "F#4"},
		{3, "A", "Aeolian", 0, 0, false, "C5"},
		{2, "Bb", "Major", 0, 0, false, "C5"},
		{3, "Bb", "Major", 0, 0, false, "D5"},
		{4, "Eb", "Major", 0, 0, false, "Ab4"},
		{6, "C", "Pentatonic", 0, 0, false, "C5"},
		{3, "C", "Harmonic Minor", 0, 0, false, "D#4"},
		{7, "A", "harmonic-minor", 0, 0, false, "G#5"},
		{2, "D", "Dorian", 1, 0, false, "E5"},
		{13, "C", "Chromatic", 0, 0, false, "C5"},
	}
	for _, test := range tests {
		got, err := ligature.ResolveNote(test.degree, test.root, test.mode, test.octaveShift, test.accidental, test.isNatural)
		if err != nil {
			t.Errorf("ResolveNote(%d, %q, %q, %d, %d, %v) failed: %v", test.degree, test.root, test.mode, test.octaveShift, test.accidental, test.isNatural, err)
			continue
		}
		if got != test.expected {
			t.Errorf("ResolveNote(%d, %q, %q, %d, %d, %v) = %q, expected %q", test.degree, test.root, test.mode, test.octaveShift, test.accidental, test.isNatural, got, test.expected)
		}
	}
}

func TestResolveNoteErrors(t *testing.T) {
	tests := []struct {
		name        string
		degree      int
		root, mode  string
		octaveShift int
		expected    error
	}{
		{"zero degree", 0, "C", "Major", 0, ligature.ErrInvalidDegree},
		{"negative degree", -3, "C", "Major", 0, ligature.ErrInvalidDegree},
		{"unknown mode", 1, "C", "Blues", 0, ligature.ErrUnknownMode},
		{"unknown root", 1, "H", "Major", 0, ligature.ErrUnknownRoot},
		{"garbage after root", 1, "Cx", "Major", 0, ligature.ErrUnknownRoot},
		{"too high", 1, "C", "Major", 6, ligature.ErrOutOfRange},
		{"too low", 1, "C", "Major", -6, ligature.ErrOutOfRange},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ligature.ResolveNote(test.degree, test.root, test.mode, test.octaveShift, 0, false)
			if !errors.Is(err, test.expected) {
				t.Errorf("expected error %v, got %v", test.expected, err)
			}
		})
	}
}

func TestMIDINote(t *testing.T) {
	key, err := ligature.MIDINote(1, "C", "Major", 0, 0, false)
	if err != nil || key != ligature.MiddleC {
		t.Errorf("degree 1 of C Major should be middle C, got %d (%v)", key, err)
	}
	key, err = ligature.MIDINote(5, "G", "Mixolydian", -1, 0, false)
	if err != nil || key != 62 {
		t.Errorf("expected 62, got %d (%v)", key, err)
	}
	cfg := ligature.TrackConfig{ScaleRoot: "C", ScaleMode: "Major"}
	key, err = ligature.NoteDef{Degree: 1}.Key(cfg, 1, -2)
	if err != nil || key != 70 {
		t.Errorf("expected 70 after octave shift and transposition, got %d (%v)", key, err)
	}
}

func TestExpandChord(t *testing.T) {
	tests := []struct {
		alias    string
		expected []ligature.NoteDef
	}{
		{"@1", []ligature.NoteDef{{Degree: 1}, {Degree: 3}, {Degree: 5}}},
		{"@5:7", []ligature.NoteDef{{Degree: 5}, {Degree: 7}, {Degree: 9}, {Degree: 11}}},
		{"@2:5", []ligature.NoteDef{{Degree: 2}, {Degree: 6}}},
		{"@4sus2", []ligature.NoteDef{{Degree: 4}, {Degree: 5}, {Degree: 8}}},
		{"@b7", []ligature.NoteDef{{Degree: 7, Accidental: -1}, {Degree: 9, Accidental: -1}, {Degree: 11, Accidental: -1}}},
		{"@1'", []ligature.NoteDef{{Degree: 1, OctaveShift: 1}, {Degree: 3, OctaveShift: 1}, {Degree: 5, OctaveShift: 1}}},
		{"@6:9,", []ligature.NoteDef{{Degree: 6, OctaveShift: -1}, {Degree: 8, OctaveShift: -1}, {Degree: 10, OctaveShift: -1}, {Degree: 12, OctaveShift: -1}, {Degree: 14, OctaveShift: -1}}},
	}
	for _, test := range tests {
		got, err := ligature.ExpandChord(test.alias)
		if err != nil {
			t.Errorf("ExpandChord(%q) failed: %v", test.alias, err)
			continue
		}
		if !reflect.DeepEqual(got, test.expected) {
			t.Errorf("ExpandChord(%q) = %v, expected %v", test.alias, got, test.expected)
		}
	}
	for _, alias := range []string{"1", "@", "@x", "@0", "@1:13", "@1maj"} {
		if _, err := ligature.ExpandChord(alias); err == nil {
			t.Errorf("ExpandChord(%q) should fail", alias)
		}
	}
}

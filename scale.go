package ligature

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

var (
	ErrInvalidDegree = errors.New("scale degree should be >= 1")
	ErrUnknownMode   = errors.New("unknown scale mode")
	ErrUnknownRoot   = errors.New("unknown scale root")
	ErrOutOfRange    = errors.New("note out of MIDI range")
)

var scaleModes = map[string][]int{
	"major":            {0, 2, 4, 5, 7, 9, 11},
	"minor":            {0, 2, 3, 5, 7, 8, 10},
	"dorian":           {0, 2, 3, 5, 7, 9, 10},
	"phrygian":         {0, 1, 3, 5, 7, 8, 10},
	"lydian":           {0, 2, 4, 6, 7, 9, 11},
	"mixolydian":       {0, 2, 4, 5, 7, 9, 10},
	"locrian":          {0, 1, 3, 5, 6, 8, 10},
	"harmonic_minor":   {0, 2, 3, 5, 7, 8, 11},
	"melodic_minor":    {0, 2, 3, 5, 7, 9, 11},
	"pentatonic":       {0, 2, 4, 7, 9},
	"minor_pentatonic": {0, 3, 5, 7, 10},
	"chromatic":        {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

var modeAliases = map[string]string{
	"ionian":           "major",
	"aeolian":          "minor",
	"natural_minor":    "minor",
	"major_pentatonic": "pentatonic",
}

var letterSemitones = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

var (
	sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

// MiddleC is the MIDI key of degree 1 of a C scale with no octave shift.
const MiddleC = 60

// ScaleIntervals returns the semitone offsets of a scale mode. Mode names are
// case insensitive and spaces or dashes are treated as underscores, so
// "Harmonic Minor" and "harmonic-minor" are the same mode.
func ScaleIntervals(mode string) ([]int, error) {
	key := normalizeMode(mode)
	if alias, ok := modeAliases[key]; ok {
		key = alias
	}
	intervals, ok := scaleModes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return intervals, nil
}

func normalizeMode(mode string) string {
	s := cases.Fold().String(strings.TrimSpace(mode))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// RootSemitone returns the pitch class (0-11) of a root note name such as
// "C", "F#" or "Bb".
func RootSemitone(root string) (int, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnknownRoot)
	}
	letter := root[0]
	if letter >= 'A' && letter <= 'Z' {
		letter += 'a' - 'A'
	}
	semi, ok := letterSemitones[letter]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRoot, root)
	}
	for _, r := range root[1:] {
		switch r {
		case '#', '♯':
			semi++
		case 'b', '♭':
			semi--
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownRoot, root)
		}
	}
	return mod(semi, 12), nil
}

// MIDINote resolves a scale degree to a MIDI key number. Degrees beyond the
// length of the scale continue into the next octaves. isNatural ignores the
// accidental.
func MIDINote(degree int, root, mode string, octaveShift, accidental int, isNatural bool) (int, error) {
	if degree < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDegree, degree)
	}
	intervals, err := ScaleIntervals(mode)
	if err != nil {
		return 0, err
	}
	rootSemi, err := RootSemitone(root)
	if err != nil {
		return 0, err
	}
	n := len(intervals)
	index, octave := (degree-1)%n, (degree-1)/n
	key := MiddleC + rootSemi + intervals[index] + 12*(octave+octaveShift)
	if !isNatural {
		key += accidental
	}
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, key)
	}
	return key, nil
}

// ResolveNote resolves a scale degree to a pitch name with octave, e.g. "C4"
// or "Bb3". Flat names are used when the root or the accidental is flat.
func ResolveNote(degree int, root, mode string, octaveShift, accidental int, isNatural bool) (string, error) {
	key, err := MIDINote(degree, root, mode, octaveShift, accidental, isNatural)
	if err != nil {
		return "", err
	}
	names := &sharpNames
	if (accidental < 0 && !isNatural) || (len(root) > 1 && strings.ContainsAny(root[1:], "b♭")) {
		names = &flatNames
	}
	return fmt.Sprintf("%s%d", names[key%12], key/12-1), nil
}

// Key resolves the note to a MIDI key in the scale of cfg, adding the octave
// shift of the event and a transposition in semitones.
func (n NoteDef) Key(cfg TrackConfig, eventOctave, transpose int) (int, error) {
	key, err := MIDINote(n.Degree, cfg.ScaleRoot, cfg.ScaleMode, n.OctaveShift+eventOctave, n.Accidental, n.IsNatural)
	if err != nil {
		return 0, err
	}
	key += transpose
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, key)
	}
	return key, nil
}

// Name resolves the note to a pitch name in the scale of cfg.
func (n NoteDef) Name(cfg TrackConfig, eventOctave int) (string, error) {
	return ResolveNote(n.Degree, cfg.ScaleRoot, cfg.ScaleMode, n.OctaveShift+eventOctave, n.Accidental, n.IsNatural)
}

func mod(a, b int) int {
	if a < 0 {
		return b - 1 - mod(-a-1, b)
	}
	return a % b
}

package ligature

import (
	"fmt"
	"strconv"
	"strings"
)

// chordShapes are the scale degree offsets, relative to the root degree, of
// the chord qualities an alias can name. Chords are built by stacking
// diatonic thirds, so the quality of a triad follows the scale.
var chordShapes = map[string][]int{
	"":     {0, 2, 4},
	"5":    {0, 4},
	"7":    {0, 2, 4, 6},
	"9":    {0, 2, 4, 6, 8},
	"sus2": {0, 1, 4},
	"sus4": {0, 3, 4},
}

// ExpandChord expands a chord alias such as "@1", "@5:7", "@b7" or "@4sus2"
// into the notes of the chord. Numeric qualities (5, 7, 9) are separated from
// the root degree with a colon. The optional accidental applies to every note
// of the chord; trailing octave marks (' or ,) shift the whole chord.
func ExpandChord(alias string) ([]NoteDef, error) {
	s := strings.TrimSpace(alias)
	if !strings.HasPrefix(s, "@") {
		return nil, fmt.Errorf("chord alias %q should start with @", alias)
	}
	s = s[1:]
	var root NoteDef
	if len(s) > 0 {
		switch s[0] {
		case '#':
			root.Accidental = 1
			s = s[1:]
		case 'b':
			root.Accidental = -1
			s = s[1:]
		case 'n':
			root.IsNatural = true
			s = s[1:]
		}
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	degree, err := strconv.Atoi(s[:i])
	if err != nil || degree < 1 {
		return nil, fmt.Errorf("chord alias %q: invalid root degree", alias)
	}
	s = s[i:]
	for strings.HasSuffix(s, "'") || strings.HasSuffix(s, ",") {
		if s[len(s)-1] == '\'' {
			root.OctaveShift++
		} else {
			root.OctaveShift--
		}
		s = s[:len(s)-1]
	}
	shape, ok := chordShapes[strings.TrimPrefix(s, ":")]
	if !ok {
		return nil, fmt.Errorf("chord alias %q: unknown quality %q", alias, s)
	}
	ret := make([]NoteDef, len(shape))
	for j, offset := range shape {
		n := root
		n.Degree = degree + offset
		ret[j] = n
	}
	return ret, nil
}

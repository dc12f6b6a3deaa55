package ligature

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

type (
	// ParseError is returned by Parse when the text is not a valid Ligature
	// document. Line is 1-based.
	ParseError struct {
		Line int
		Msg  string
	}

	// Qualities is the context used to resolve {name} and {name|default}
	// references in config and duration values. The parser treats it as an
	// opaque lookup table.
	Qualities map[string]float64

	section int

	parser struct {
		track     *ParsedTrack
		qualities Qualities
		section   section
		pattern   *Pattern
		explicit  bool // pattern has an explicit Duration line
	}
)

const (
	noSection section = iota
	configSection
	instrumentsSection
	patternSection
	playlistSection
)

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse parses a Ligature document. It is deterministic: the result depends
// only on the text and the qualities. Failures are reported as *ParseError.
func Parse(text string, qualities Qualities) (*ParsedTrack, error) {
	p := parser{
		track:     &ParsedTrack{Config: DefaultConfig()},
		qualities: qualities,
	}
	for i, raw := range strings.Split(text, "\n") {
		if err := p.line(raw); err != nil {
			return nil, &ParseError{Line: i + 1, Msg: err.Error()}
		}
	}
	p.finishPattern()
	return p.track, nil
}

func (p *parser) line(raw string) error {
	line := strings.TrimSpace(raw)
	if isBlankOrComment(line) {
		return nil
	}
	if strings.HasPrefix(line, "[") {
		sec, arg, err := parseHeader(line)
		if err != nil {
			return err
		}
		p.finishPattern()
		p.section = sec
		if sec == patternSection {
			if _, ok := p.track.Pattern(arg); ok {
				return fmt.Errorf("duplicate pattern %q", arg)
			}
			p.track.Patterns = append(p.track.Patterns, Pattern{ID: arg, Tracks: map[string][]NoteEvent{}})
			p.pattern = &p.track.Patterns[len(p.track.Patterns)-1]
			p.explicit = false
		}
		return nil
	}
	switch p.section {
	case configSection:
		key, value, err := splitKeyValue(line)
		if err != nil {
			return err
		}
		if value, err = resolveQualities(value, p.qualities); err != nil {
			return err
		}
		return p.track.Config.Set(key, value)
	case instrumentsSection:
		key, value, err := splitKeyValue(line)
		if err != nil {
			return err
		}
		p.track.Instruments = append(p.track.Instruments, Instrument{Name: key, Preset: value})
		return nil
	case patternSection:
		return p.patternLine(line)
	case playlistSection:
		item, err := parsePlaylistRow(line)
		if err != nil {
			return err
		}
		p.track.Playlist = append(p.track.Playlist, item)
		return nil
	}
	return errors.New("content outside of a section")
}

func (p *parser) patternLine(line string) error {
	if !isLaneLine(line) {
		key, value, err := splitKeyValue(line)
		if err != nil {
			return err
		}
		if foldKey(key) != "duration" {
			return fmt.Errorf("unknown pattern property %q", key)
		}
		if value, err = resolveQualities(value, p.qualities); err != nil {
			return err
		}
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		p.pattern.Duration = d
		p.explicit = true
		return nil
	}
	lane, events, _ := strings.Cut(line, "|")
	lane = strings.TrimSpace(lane)
	if lane == "" {
		return errors.New("missing lane name")
	}
	list, err := ParseEventList(events)
	if err != nil {
		return fmt.Errorf("lane %q: %v", lane, err)
	}
	p.pattern.Tracks[lane] = append(p.pattern.Tracks[lane], list...)
	return nil
}

// isLaneLine tells a lane line from a property line of a pattern section. A
// property value may hold a {name|default} reference, so a '|' only starts
// the events when no ':' comes before it.
func isLaneLine(line string) bool {
	bar := strings.IndexByte(line, '|')
	if bar < 0 {
		return false
	}
	colon := strings.IndexByte(line, ':')
	return colon < 0 || colon > bar
}

func (p *parser) finishPattern() {
	if p.pattern == nil {
		return
	}
	p.pattern.SortEvents()
	if !p.explicit {
		if end := p.pattern.EventsEnd(); end > 0 {
			p.pattern.Duration = max(int(math.Ceil(end-1e-9)), 1)
		} else {
			p.pattern.Duration = MissingPatternDuration
		}
	}
	p.pattern = nil
}

func isBlankOrComment(line string) bool {
	return line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

func parseHeader(line string) (section, string, error) {
	if !strings.HasSuffix(line, "]") {
		return noSection, "", fmt.Errorf("unterminated section header %q", line)
	}
	inner := strings.TrimSpace(line[1 : len(line)-1])
	keyword, arg, hasArg := strings.Cut(inner, ":")
	switch foldKey(keyword) {
	case "config":
		return configSection, "", nil
	case "instruments":
		return instrumentsSection, "", nil
	case "playlist":
		return playlistSection, "", nil
	case "pattern":
		arg = strings.TrimSpace(arg)
		if !hasArg || arg == "" {
			return noSection, "", errors.New("pattern section without an id")
		}
		if !ValidPatternID(arg) {
			return noSection, "", fmt.Errorf("invalid pattern id %q", arg)
		}
		return patternSection, arg, nil
	}
	return noSection, "", fmt.Errorf("unknown section %q", inner)
}

func foldKey(key string) string {
	return cases.Fold().String(strings.TrimSpace(key))
}

func splitKeyValue(line string) (key, value string, err error) {
	key, value, ok := strings.Cut(line, ":")
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected \"key: value\", got %q", line)
	}
	if value == "" {
		return "", "", fmt.Errorf("missing value for %q", key)
	}
	return key, value, nil
}

// Set sets a config value from its text form. Keys are case insensitive:
// "bpm", "grid", "time" and "scale". Setting the grid this way does not
// rescale the patterns; see ParsedTrack.SetGrid.
func (cfg *TrackConfig) Set(key, value string) error {
	switch foldKey(key) {
	case "bpm":
		bpm, err := ParseNumber(value)
		if err != nil || bpm <= 0 {
			return fmt.Errorf("invalid BPM %q", value)
		}
		cfg.BPM = bpm
	case "grid":
		grid, err := strconv.Atoi(value)
		if err != nil || grid <= 0 {
			return fmt.Errorf("invalid grid %q", value)
		}
		cfg.Grid = grid
	case "time":
		ts, err := parseTimeSig(value)
		if err != nil {
			return err
		}
		cfg.TimeSig = ts
	case "scale":
		root, mode, ok := strings.Cut(value, " ")
		mode = strings.TrimSpace(mode)
		if !ok || mode == "" {
			return fmt.Errorf("invalid scale %q, expected \"<root> <mode>\"", value)
		}
		cfg.ScaleRoot, cfg.ScaleMode = root, mode
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func parseTimeSig(value string) (TimeSig, error) {
	a, b, ok := strings.Cut(value, "/")
	beats, err1 := strconv.Atoi(strings.TrimSpace(a))
	unit, err2 := strconv.Atoi(strings.TrimSpace(b))
	if !ok || err1 != nil || err2 != nil || beats <= 0 || unit <= 0 {
		return TimeSig{}, fmt.Errorf("invalid time signature %q", value)
	}
	return TimeSig{BeatsPerBar: beats, Unit: unit}, nil
}

func parseDuration(value string) (int, error) {
	d, err := strconv.Atoi(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}

// resolveQualities replaces {name} and {name|default} references with the
// value of the quality.
func resolveQualities(value string, qualities Qualities) (string, error) {
	var b strings.Builder
	for {
		start := strings.IndexByte(value, '{')
		if start < 0 {
			b.WriteString(value)
			return b.String(), nil
		}
		end := strings.IndexByte(value[start:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated quality reference in %q", value)
		}
		end += start
		name, def, hasDef := strings.Cut(value[start+1:end], "|")
		name = strings.TrimSpace(name)
		b.WriteString(value[:start])
		if q, ok := qualities[name]; ok {
			b.WriteString(FormatNumber(q))
		} else if hasDef {
			b.WriteString(strings.TrimSpace(def))
		} else {
			return "", fmt.Errorf("unknown quality %q", name)
		}
		value = value[end+1:]
	}
}

// ParseNumber parses a finite decimal number. Unlike strconv.ParseFloat it
// rejects inf and nan, which would not survive serializing.
func ParseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// ParseEventList parses the ';' separated events of a lane line. Empty
// entries are skipped.
func ParseEventList(s string) ([]NoteEvent, error) {
	var ret []NoteEvent
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		e, err := ParseEvent(part)
		if err != nil {
			return nil, err
		}
		ret = append(ret, e)
	}
	return ret, nil
}

// ParseEvent parses a single event: "time duration notes [modifiers...]".
func ParseEvent(s string) (NoteEvent, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return NoteEvent{}, fmt.Errorf("event %q: expected \"time duration notes\"", strings.TrimSpace(s))
	}
	t, err := ParseNumber(fields[0])
	if err != nil || t < 0 {
		return NoteEvent{}, fmt.Errorf("event %q: invalid time %q", strings.TrimSpace(s), fields[0])
	}
	d, err := ParseNumber(fields[1])
	if err != nil || d <= 0 {
		return NoteEvent{}, fmt.Errorf("event %q: invalid duration %q", strings.TrimSpace(s), fields[1])
	}
	notes, err := ParseNotes(fields[2])
	if err != nil {
		return NoteEvent{}, fmt.Errorf("event %q: %v", strings.TrimSpace(s), err)
	}
	e := NoteEvent{Time: t, Duration: d, Notes: notes}
	for _, m := range fields[3:] {
		if err := applyModifier(&e, m); err != nil {
			return NoteEvent{}, fmt.Errorf("event %q: %v", strings.TrimSpace(s), err)
		}
	}
	return e, nil
}

func applyModifier(e *NoteEvent, m string) error {
	switch c := m[0]; {
	case c == 'v':
		v, err := ParseNumber(m[1:])
		if err != nil {
			return fmt.Errorf("invalid volume %q", m)
		}
		e.Volume = &v
	case c == 'o':
		o, err := strconv.Atoi(m[1:])
		if err != nil {
			return fmt.Errorf("invalid octave shift %q", m)
		}
		e.OctaveShift = &o
	case c >= 'A' && c <= 'Z':
		fx, err := ParseEffect(m)
		if err != nil {
			return err
		}
		e.Effects = append(e.Effects, fx)
	default:
		return fmt.Errorf("unknown modifier %q", m)
	}
	return nil
}

// ParseEffect parses an effect such as "F50" or "P-3". The code is the first
// letter, upper cased; the value defaults to 0 when omitted.
func ParseEffect(s string) (Effect, error) {
	if s == "" {
		return Effect{}, errors.New("empty effect")
	}
	code := strings.ToUpper(s[:1])
	if code[0] < 'A' || code[0] > 'Z' {
		return Effect{}, fmt.Errorf("invalid effect code %q", s[:1])
	}
	fx := Effect{Code: code}
	if len(s) > 1 {
		v, err := strconv.Atoi(s[1:])
		if err != nil {
			return Effect{}, fmt.Errorf("invalid effect value %q", s)
		}
		fx.Value = v
	}
	return fx, nil
}

// ParseNotes parses a note or a '+' separated chord.
func ParseNotes(s string) ([]NoteDef, error) {
	parts := strings.Split(s, "+")
	ret := make([]NoteDef, 0, len(parts))
	for _, part := range parts {
		n, err := ParseNote(part)
		if err != nil {
			return nil, err
		}
		ret = append(ret, n)
	}
	return ret, nil
}

// ParseNote parses a note: an optional accidental (#, b, or n for natural), a
// scale degree and any number of octave marks (' up, , down).
func ParseNote(s string) (NoteDef, error) {
	var n NoteDef
	rest := s
	if rest != "" {
		switch rest[0] {
		case '#':
			n.Accidental = 1
			rest = rest[1:]
		case 'b':
			n.Accidental = -1
			rest = rest[1:]
		case 'n':
			n.IsNatural = true
			rest = rest[1:]
		}
	}
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	degree, err := strconv.Atoi(rest[:i])
	if err != nil || degree < 1 {
		return NoteDef{}, fmt.Errorf("invalid note %q", s)
	}
	n.Degree = degree
	for _, c := range rest[i:] {
		switch c {
		case '\'':
			n.OctaveShift++
		case ',':
			n.OctaveShift--
		default:
			return NoteDef{}, fmt.Errorf("invalid note %q", s)
		}
	}
	return n, nil
}

// ValidPatternID tells if s can be used as a pattern id.
func ValidPatternID(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_' || c == '.' || c == '#' || c == '-':
		default:
			return false
		}
	}
	return true
}

func parsePlaylistRow(line string) (PlaylistItem, error) {
	if cmd, ok := strings.CutPrefix(line, "!"); ok {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			return PlaylistItem{}, errors.New("empty command")
		}
		return PlaylistItem{Type: CommandItem, Command: cmd}, nil
	}
	item := PlaylistItem{Type: PatternItem}
	if line == EmptyRow {
		return item, nil
	}
	for _, layerText := range strings.Split(line, "|") {
		var layer Layer
		for _, itemText := range strings.Split(layerText, ",") {
			c, err := ParseChainItem(itemText)
			if err != nil {
				return PlaylistItem{}, err
			}
			layer.Items = append(layer.Items, c)
		}
		item.Layers = append(item.Layers, layer)
	}
	return item, nil
}

// ParseChainItem parses a chain item: a pattern id optionally followed by a
// transposition in parentheses, e.g. "Main" or "Bass(-2)".
func ParseChainItem(s string) (ChainItem, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ChainItem{}, errors.New("empty chain item")
	}
	id, rest, hasTransposition := strings.Cut(s, "(")
	id = strings.TrimSpace(id)
	if !ValidPatternID(id) {
		return ChainItem{}, fmt.Errorf("invalid pattern id %q", id)
	}
	c := ChainItem{ID: id}
	if hasTransposition {
		inner, ok := strings.CutSuffix(strings.TrimSpace(rest), ")")
		if !ok {
			return ChainItem{}, fmt.Errorf("unterminated transposition in %q", s)
		}
		t, err := strconv.Atoi(strings.TrimSpace(inner))
		if err != nil {
			return ChainItem{}, fmt.Errorf("invalid transposition in %q", s)
		}
		c.Transposition = t
	}
	return c, nil
}

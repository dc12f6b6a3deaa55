package ligature

import (
	"fmt"
	"sort"
	"strings"
)

type (
	// Diagnostic is a problem found by Lint on a given line (1-based).
	Diagnostic struct {
		Line     int
		Message  string
		Severity Severity
	}

	// Severity tells if a diagnostic makes the text unparseable (Error) or is
	// only suspicious (Warning), like a reference to an undefined pattern.
	Severity int

	patternRef struct {
		line int
		id   string
	}
)

const (
	SeverityError Severity = iota
	SeverityWarning
)

// skippedSection swallows the lines following a malformed header, so that one
// bad header does not flag every line after it.
const skippedSection section = -1

func (d Diagnostic) String() string {
	if d.Severity == SeverityWarning {
		return fmt.Sprintf("line %d: warning: %s", d.Line, d.Message)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Lint checks a Ligature document line by line and returns the diagnostics
// sorted by line. Unlike Parse, it does not stop at the first problem and
// works on text that cannot be parsed at all. Quality references cannot be
// checked without the qualities, so values containing references without a
// default are not validated.
func Lint(text string) []Diagnostic {
	var ret []Diagnostic
	report := func(line int, severity Severity, format string, args ...any) {
		ret = append(ret, Diagnostic{Line: line, Message: fmt.Sprintf(format, args...), Severity: severity})
	}
	cfg := DefaultConfig()
	var refs []patternRef
	patterns := map[string]int{}
	sec := noSection
	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if isBlankOrComment(line) {
			continue
		}
		if strings.HasPrefix(line, "[") {
			s, arg, err := parseHeader(line)
			if err != nil {
				report(lineNo, SeverityError, "%v", err)
				sec = skippedSection
				continue
			}
			sec = s
			if s == patternSection {
				if prev, ok := patterns[arg]; ok {
					report(lineNo, SeverityError, "duplicate pattern %q, first defined on line %d", arg, prev)
				} else {
					patterns[arg] = lineNo
				}
			}
			continue
		}
		switch sec {
		case skippedSection:
		case noSection:
			report(lineNo, SeverityError, "content outside of a section")
		case configSection:
			lintConfigLine(line, &cfg, func(severity Severity, format string, args ...any) {
				report(lineNo, severity, format, args...)
			})
		case instrumentsSection:
			if _, _, err := splitKeyValue(line); err != nil {
				report(lineNo, SeverityError, "%v", err)
			}
		case patternSection:
			lintPatternLine(line, func(format string, args ...any) {
				report(lineNo, SeverityError, format, args...)
			})
		case playlistSection:
			item, err := parsePlaylistRow(line)
			if err != nil {
				report(lineNo, SeverityError, "%v", err)
				continue
			}
			for _, l := range item.Layers {
				for _, c := range l.Items {
					refs = append(refs, patternRef{line: lineNo, id: c.ID})
				}
			}
		}
	}
	for _, r := range refs {
		if _, ok := patterns[r.id]; !ok {
			report(r.line, SeverityWarning, "pattern %q is not defined", r.id)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Line < ret[j].Line })
	return ret
}

func lintConfigLine(line string, cfg *TrackConfig, report func(Severity, string, ...any)) {
	key, value, err := splitKeyValue(line)
	if err != nil {
		report(SeverityError, "%v", err)
		return
	}
	if strings.ContainsAny(value, "{}") {
		if strings.Count(value, "{") != strings.Count(value, "}") {
			report(SeverityError, "unbalanced quality reference in %q", value)
			return
		}
		resolved, err := resolveQualities(value, nil)
		if err != nil {
			switch foldKey(key) {
			case "bpm", "grid", "time", "scale":
			default:
				report(SeverityError, "unknown config key %q", key)
			}
			return
		}
		value = resolved
	}
	if err := cfg.Set(key, value); err != nil {
		report(SeverityError, "%v", err)
		return
	}
	if foldKey(key) != "scale" {
		return
	}
	if _, err := RootSemitone(cfg.ScaleRoot); err != nil {
		report(SeverityWarning, "%v", err)
	}
	if _, err := ScaleIntervals(cfg.ScaleMode); err != nil {
		report(SeverityWarning, "%v", err)
	}
}

func lintPatternLine(line string, report func(string, ...any)) {
	if !isLaneLine(line) {
		key, value, err := splitKeyValue(line)
		if err != nil {
			report("%v", err)
			return
		}
		if foldKey(key) != "duration" {
			report("unknown pattern property %q", key)
			return
		}
		if strings.Contains(value, "{") {
			if value, err = resolveQualities(value, nil); err != nil {
				return
			}
		}
		if _, err := parseDuration(value); err != nil {
			report("%v", err)
		}
		return
	}
	lane, events, _ := strings.Cut(line, "|")
	lane = strings.TrimSpace(lane)
	if lane == "" {
		report("missing lane name")
	}
	// every event is checked, not only the first failing one
	for _, part := range strings.Split(events, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if _, err := ParseEvent(part); err != nil {
			report("lane %q: %v", lane, err)
		}
	}
}

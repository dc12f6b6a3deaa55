package ligature

import "golang.org/x/exp/slices"

type (
	// PlaylistItemType tells if a playlist row plays patterns or is an opaque
	// command directive.
	PlaylistItemType string

	// PlaylistItem is one row of the playlist. Pattern rows play their layers
	// simultaneously; command rows carry an opaque directive that the tracker
	// core renders but does not edit.
	PlaylistItem struct {
		Type    PlaylistItemType
		Layers  []Layer `yaml:",omitempty"`
		Command string  `yaml:",omitempty"`
	}

	// Layer is one of the simultaneous lines of a playlist row. Its chain items
	// are played back to back.
	Layer struct {
		Items []ChainItem `yaml:",flow"`
	}

	// ChainItem references a pattern by id, transposed by Transposition
	// semitones. The id may be dangling: the pattern is then considered
	// missing but the item is still valid.
	ChainItem struct {
		ID            string
		Transposition int `yaml:",omitempty"`
	}

	// Segment is the time span [Start, End) a chain item occupies within its
	// layer. Segments are always recomputed from the pattern table, never
	// stored.
	Segment struct {
		Start, End    int
		PatternID     string
		Transposition int
		Missing       bool
	}
)

const (
	PatternItem PlaylistItemType = "pattern"
	CommandItem PlaylistItemType = "command"
)

// EmptyRow is the text of a pattern row whose layers have all been removed.
const EmptyRow = "-"

// NewPatternItem returns a pattern row with a single layer containing a
// single chain item.
func NewPatternItem(id string) PlaylistItem {
	return PlaylistItem{Type: PatternItem, Layers: []Layer{{Items: []ChainItem{{ID: id}}}}}
}

// Copy makes a deep copy of a PlaylistItem.
func (p *PlaylistItem) Copy() PlaylistItem {
	ret := PlaylistItem{Type: p.Type, Command: p.Command}
	if p.Layers != nil {
		ret.Layers = make([]Layer, len(p.Layers))
		for i, l := range p.Layers {
			ret.Layers[i] = l.Copy()
		}
	}
	return ret
}

// Copy makes a deep copy of a Layer.
func (l *Layer) Copy() Layer {
	if l.Items == nil {
		return Layer{}
	}
	return Layer{Items: slices.Clone(l.Items)}
}

// Segments returns the time spans of the chain items of the layer. A missing
// pattern occupies MissingPatternDuration steps.
func (l *Layer) Segments(t *ParsedTrack) []Segment {
	ret := make([]Segment, 0, len(l.Items))
	start := 0
	for _, item := range l.Items {
		d, ok := t.PatternDuration(item.ID)
		ret = append(ret, Segment{
			Start:         start,
			End:           start + d,
			PatternID:     item.ID,
			Transposition: item.Transposition,
			Missing:       !ok,
		})
		start += d
	}
	return ret
}

// Duration returns the total chained duration of the layer, in steps.
func (l *Layer) Duration(t *ParsedTrack) int {
	ret := 0
	for _, item := range l.Items {
		d, _ := t.PatternDuration(item.ID)
		ret += d
	}
	return ret
}

// Duration returns the length of the row: the longest of its layers. Command
// rows have no duration.
func (p *PlaylistItem) Duration(t *ParsedTrack) int {
	ret := 0
	for i := range p.Layers {
		ret = max(ret, p.Layers[i].Duration(t))
	}
	return ret
}

// SegmentAt returns the segment of the layer covering step, if any.
func SegmentAt(segments []Segment, step int) (Segment, bool) {
	for _, s := range segments {
		if step >= s.Start && step < s.End {
			return s, true
		}
	}
	return Segment{}, false
}

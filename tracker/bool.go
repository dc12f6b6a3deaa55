package tracker

type (
	Bool struct {
		BoolData
	}

	BoolData interface {
		Value() bool
		Enabled() bool
		setValue(bool)
	}

	Playing       Model
	IsPatternMode Model
	Follow        Model
)

func (v Bool) Toggle() {
	v.Set(!v.Value())
}

func (v Bool) Set(value bool) {
	if v.Enabled() && v.Value() != value {
		v.setValue(value)
	}
}

// Model methods

func (m *Model) Playing() *Playing             { return (*Playing)(m) }
func (m *Model) IsPatternMode() *IsPatternMode { return (*IsPatternMode)(m) }
func (m *Model) Follow() *Follow               { return (*Follow)(m) }

// Playing methods

func (m *Playing) Bool() Bool  { return Bool{m} }
func (m *Playing) Value() bool { return m.playing }
func (m *Playing) setValue(val bool) {
	if val {
		(*Model)(m).Play().Audition().Do()
	} else {
		(*Model)(m).Play().Stop().Do()
	}
}
func (m *Playing) Enabled() bool { return m.playing || (*Model)(m).Play().Audition().Enabled() }

// IsPatternMode methods

func (m *IsPatternMode) Bool() Bool  { return Bool{m} }
func (m *IsPatternMode) Value() bool { return m.d.Mode == PatternMode }
func (m *IsPatternMode) setValue(val bool) {
	g := (*Model)(m).Grid()
	if val {
		g.SetPattern(g.PatternID())
	} else {
		g.SetRow(m.d.PlaylistRow)
	}
}
func (m *IsPatternMode) Enabled() bool { return true }

// Follow methods

func (m *Follow) Bool() Bool        { return Bool{m} }
func (m *Follow) Value() bool       { return m.follow }
func (m *Follow) setValue(val bool) { m.follow = val }
func (m *Follow) Enabled() bool     { return true }

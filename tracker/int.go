package tracker

import "math"

type (
	Int struct {
		IntData
	}

	IntData interface {
		Value() int
		Range() intRange

		setValue(int)
		change(kind string) func()
	}

	intRange struct {
		Min, Max int
	}

	GridInt     Model
	BPMInt      Model
	BeatsPerBar Model
)

func (v Int) Add(delta int) (ok bool) {
	return v.Set(v.Value() + delta)
}

func (v Int) Set(value int) (ok bool) {
	r := v.Range()
	value = r.Clamp(value)
	if value == v.Value() || value < r.Min || value > r.Max {
		return false
	}
	defer v.change("Set")()
	v.setValue(value)
	return true
}

func (r intRange) Clamp(value int) int {
	return max(min(value, r.Max), r.Min)
}

// Model methods

func (m *Model) GridInt() *GridInt         { return (*GridInt)(m) }
func (m *Model) BPMInt() *BPMInt           { return (*BPMInt)(m) }
func (m *Model) BeatsPerBar() *BeatsPerBar { return (*BeatsPerBar)(m) }

// GridInt changes the grid resolution, rescaling all the patterns

func (v *GridInt) Int() Int           { return Int{v} }
func (v *GridInt) Value() int         { return v.track.Config.Grid }
func (v *GridInt) setValue(value int) { v.scratch.SetGrid(value) }
func (v *GridInt) Range() intRange    { return intRange{1, 96} }
func (v *GridInt) change(kind string) func() {
	return (*Model)(v).change("GridInt." + kind)
}

// BPMInt

func (v *BPMInt) Int() Int           { return Int{v} }
func (v *BPMInt) Value() int         { return int(math.Round(v.track.Config.BPM)) }
func (v *BPMInt) setValue(value int) { v.scratch.Config.BPM = float64(value) }
func (v *BPMInt) Range() intRange    { return intRange{1, 999} }
func (v *BPMInt) change(kind string) func() {
	return (*Model)(v).change("BPMInt." + kind)
}

// BeatsPerBar

func (v *BeatsPerBar) Int() Int           { return Int{v} }
func (v *BeatsPerBar) Value() int         { return v.track.Config.TimeSig.BeatsPerBar }
func (v *BeatsPerBar) setValue(value int) { v.scratch.Config.TimeSig.BeatsPerBar = value }
func (v *BeatsPerBar) Range() intRange    { return intRange{1, 32} }
func (v *BeatsPerBar) change(kind string) func() {
	return (*Model)(v).change("BeatsPerBar." + kind)
}

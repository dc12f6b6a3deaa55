package tracker

import (
	"strconv"
	"strings"
)

type (
	String struct {
		value StringValue
	}

	StringValue interface {
		Value() string
		SetValue(string) bool
	}
)

func MakeString(value StringValue) String {
	return String{value: value}
}

func (v String) SetValue(value string) bool {
	if v.value == nil || v.value.Value() == value {
		return false
	}
	return v.value.SetValue(value)
}

func (v String) Value() string {
	if v.value == nil {
		return ""
	}
	return v.value.Value()
}

// ScaleString edits the "<root> <mode>" scale of the track
type scaleString Model

func (m *Model) Scale() String { return MakeString((*scaleString)(m)) }
func (v *scaleString) Value() string {
	return v.track.Config.ScaleRoot + " " + v.track.Config.ScaleMode
}
func (v *scaleString) SetValue(value string) bool {
	return (*Model)(v).Config().Set("scale", strings.TrimSpace(value))
}

// TimeSigString edits the "n/d" time signature of the track
type timeSigString Model

func (m *Model) TimeSig() String { return MakeString((*timeSigString)(m)) }
func (v *timeSigString) Value() string {
	ts := v.track.Config.TimeSig
	return strconv.Itoa(ts.BeatsPerBar) + "/" + strconv.Itoa(ts.Unit)
}
func (v *timeSigString) SetValue(value string) bool {
	return (*Model)(v).Config().Set("time", value)
}

// InputBufferString is the typed buffer of the in-place editor
type inputBuffer Model

func (m *Model) InputBuffer() String              { return MakeString((*inputBuffer)(m)) }
func (v *inputBuffer) Value() string              { return v.inputBuffer }
func (v *inputBuffer) SetValue(value string) bool { v.inputBuffer = value; return true }

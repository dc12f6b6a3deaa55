package tracker

import (
	"strings"

	"github.com/chroniclehub/ligature"
)

// ConfigModel edits the [CONFIG] section of the track.
type ConfigModel Model

func (m *Model) Config() *ConfigModel { return (*ConfigModel)(m) }

// Value returns the config of the last parsed track.
func (m *ConfigModel) Value() ligature.TrackConfig { return m.track.Config }

// Set sets a config key from its text form. Changing the grid rescales every
// pattern of the track in the same edit; the other keys are plain
// assignments. Returns false if the value was invalid or nothing changed.
func (m *ConfigModel) Set(key, value string) bool {
	defer (*Model)(m).change("Config." + strings.ToLower(key))()
	if m.changeCancel {
		return false
	}
	if strings.EqualFold(key, "grid") {
		probe := m.scratch.Config
		if err := probe.Set(key, value); err != nil {
			m.invalidConfig(err)
			return false
		}
		if !m.scratch.SetGrid(probe.Grid) {
			m.changeCancel = true
			return false
		}
		return true
	}
	before := m.scratch.Config
	if err := m.scratch.Config.Set(key, value); err != nil {
		m.invalidConfig(err)
		return false
	}
	if m.scratch.Config == before {
		m.changeCancel = true
		return false
	}
	return true
}

func (m *ConfigModel) invalidConfig(err error) {
	(*Model)(m).Alerts().AddNamed("InvalidConfig", err.Error(), Warning)
	m.changeCancel = true
}

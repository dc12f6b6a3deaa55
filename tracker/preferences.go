package tracker

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type (
	Preferences struct {
		Arrangement   ArrangementPreferences
		Tracker       TrackerPreferences
		ConfirmDelete bool
		YmlError      error `yaml:"-"`
	}

	ArrangementPreferences struct {
		PixelsPerStep float64
		LeftPadding   float64
		CellPadding   float64
		PollInterval  time.Duration
	}

	TrackerPreferences struct {
		PollInterval time.Duration
	}
)

// ConfigDirName is the directory under os.UserConfigDir() where the user
// overrides of the preferences and the key bindings are looked up.
const ConfigDirName = "ligature"

//go:embed preferences.yml
var defaultPreferencesYaml []byte

// DefaultPreferences returns the preferences embedded in the binary.
func DefaultPreferences() Preferences {
	var preferences Preferences
	err := yaml.UnmarshalStrict(defaultPreferencesYaml, &preferences)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal preferences: %w", err))
	}
	return preferences
}

// ReadCustomConfigYml modifies the target argument, i.e. needs a pointer
func ReadCustomConfigYml(filename string, target interface{}) (exists bool, err error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return false, err
	}
	path := filepath.Join(configDir, ConfigDirName, filename)
	bytes, err2 := os.ReadFile(path)
	if err2 != nil {
		return false, err2
	}
	err = yaml.UnmarshalStrict(bytes, target)
	return true, err
}

// MakePreferences returns the default preferences overridden by the user's
// preferences.yml, if there is one. A broken user file is reported in
// YmlError.
func MakePreferences() Preferences {
	preferences := DefaultPreferences()
	exists, err := ReadCustomConfigYml("preferences.yml", &preferences)
	if exists {
		preferences.YmlError = err
	}
	return preferences
}

// Clocks returns the clocks of the tracker grid and the arrangement for a
// transport, polling at the intervals of the preferences.
func (p Preferences) Clocks(t Transport) (tracker, arrangement Clock) {
	return Clock{Transport: t, PollInterval: p.Tracker.PollInterval},
		Clock{Transport: t, PollInterval: p.Arrangement.PollInterval}
}
